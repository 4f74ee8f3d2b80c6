package models

import "time"

// TipoAula classifies classrooms (laboratorio, auditorio, aula común).
type TipoAula struct {
	ID     int64  `db:"id_tipo_aula" json:"id_tipo_aula"`
	Nombre string `db:"nombre" json:"nombre"`
}

// Aula represents a classroom.
type Aula struct {
	ID            int64     `db:"id_aula" json:"id_aula"`
	Nombre        string    `db:"nombre" json:"nombre"`
	Capacidad     int       `db:"capacidad" json:"capacidad"`
	Piso          int       `db:"piso" json:"piso"`
	IDTipoAula    int64     `db:"id_tipo_aula" json:"id_tipo_aula"`
	Mantenimiento bool      `db:"mantenimiento" json:"mantenimiento"`
	Activo        bool      `db:"activo" json:"activo"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fecha_creacion"`
}

// AulaDetalle joins the tipo de aula name for listings.
type AulaDetalle struct {
	Aula
	TipoAulaNombre *string `db:"tipo_aula_nombre" json:"tipo_aula,omitempty"`
}

// AulaFilter narrows classroom listings.
type AulaFilter struct {
	SoloDisponibles  bool
	EnMantenimiento  bool
	IncluirInactivas bool
	IDTipoAula       *int64
}
