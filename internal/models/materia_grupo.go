package models

import "time"

// MateriaGrupo binds a materia and a grupo within one gestión. At most one
// active tuple may exist per (materia, grupo, gestión).
type MateriaGrupo struct {
	ID            int64     `db:"id_materia_grupo" json:"id_materia_grupo"`
	IDMateria     int64     `db:"id_materia" json:"id_materia"`
	IDGrupo       int64     `db:"id_grupo" json:"id_grupo"`
	IDGestion     int64     `db:"id_gestion" json:"id_gestion"`
	Observacion   *string   `db:"observacion" json:"observacion,omitempty"`
	Activo        bool      `db:"activo" json:"activo"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fecha_creacion"`
}

// MateriaGrupoDetalle enriches the tuple with display fields and the teacher
// currently assigned, when any.
type MateriaGrupoDetalle struct {
	MateriaGrupo
	MateriaSigla    string  `db:"materia_sigla" json:"materia_sigla"`
	MateriaNombre   string  `db:"materia_nombre" json:"materia_nombre"`
	GrupoNombre     string  `db:"grupo_nombre" json:"grupo_nombre"`
	GestionSemestre string  `db:"gestion_semestre" json:"gestion_semestre"`
	GestionAnio     int     `db:"gestion_anio" json:"gestion_anio"`
	DocenteAsignado *string `db:"docente_asignado" json:"docente_asignado,omitempty"`
}
