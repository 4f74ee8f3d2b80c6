package models

import "time"

// Materia represents a subject in the course catalogue.
type Materia struct {
	ID            int64     `db:"id_materia" json:"id_materia"`
	Sigla         string    `db:"sigla" json:"sigla"`
	Nombre        string    `db:"nombre" json:"nombre"`
	Activo        bool      `db:"activo" json:"activo"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fecha_creacion"`
}
