package models

import "time"

// Docente represents a teacher. The canonical key is cod_docente; no other
// identifier is used to reference a teacher anywhere in the system.
type Docente struct {
	CodDocente        int64     `db:"cod_docente" json:"cod_docente"`
	NombreCompleto    string    `db:"nombre_completo" json:"nombre_completo"`
	Email             string    `db:"email" json:"email"`
	IDTipoContrato    int64     `db:"id_tipo_contrato" json:"id_tipo_contrato"`
	Activo            bool      `db:"activo" json:"activo"`
	FechaCreacion     time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	FechaModificacion time.Time `db:"fecha_modificacion" json:"fecha_modificacion"`
}

// TipoContrato defines the weekly-hour ceiling per contract. Reference data,
// never mutated through the API.
type TipoContrato struct {
	ID         int64  `db:"id_tipo_contrato" json:"id_tipo_contrato"`
	Nombre     string `db:"nombre" json:"nombre"`
	HrsMaximas int    `db:"hrs_maximas" json:"hrs_maximas"`
}

// LimiteContrato is the flat read the assignment validator depends on instead
// of traversing docente -> tipo_contrato relations.
type LimiteContrato struct {
	CodDocente     int64  `db:"cod_docente" json:"cod_docente"`
	NombreCompleto string `db:"nombre_completo" json:"nombre_completo"`
	Activo         bool   `db:"activo" json:"activo"`
	NombreContrato string `db:"nombre_contrato" json:"nombre_contrato"`
	HrsMaximas     int    `db:"hrs_maximas" json:"hrs_maximas"`
}

// CargaDocente summarises a teacher's load within the active gestión.
type CargaDocente struct {
	CodDocente      int64   `json:"cod_docente"`
	Docente         string  `json:"docente"`
	TipoContrato    string  `json:"tipo_contrato"`
	HrsAsignadas    int     `json:"hrs_asignadas"`
	HrsMaximas      int     `json:"hrs_maximas"`
	HrsDisponibles  int     `json:"hrs_disponibles"`
	PorcentajeCarga float64 `json:"porcentaje_carga"`
}

// DocenteFilter captures filtering options for listing teachers.
type DocenteFilter struct {
	Search    string
	Activo    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
