package models

import "time"

// Grupo represents a student group.
type Grupo struct {
	ID                int64     `db:"id_grupo" json:"id_grupo"`
	Nombre            string    `db:"nombre" json:"nombre"`
	Descripcion       *string   `db:"descripcion" json:"descripcion,omitempty"`
	Cupos             int       `db:"cupos" json:"cupos"`
	CapacidadMaxima   int       `db:"capacidad_maxima" json:"capacidad_maxima"`
	Activo            bool      `db:"activo" json:"activo"`
	FechaCreacion     time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	FechaModificacion time.Time `db:"fecha_modificacion" json:"fecha_modificacion"`
}
