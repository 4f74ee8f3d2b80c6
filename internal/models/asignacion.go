package models

import "time"

// AsignacionDocente binds a docente to a materia-grupo with assigned weekly
// hours. Invariants enforced by the assignment service:
//   - at most one active row per (cod_docente, id_materia_grupo);
//   - at most one active row per materia-grupo overall;
//   - the sum of active hours per docente within one gestión never exceeds
//     the contract ceiling.
type AsignacionDocente struct {
	ID                int64     `db:"id_asignacion_docente" json:"id_asignacion_docente"`
	CodDocente        int64     `db:"cod_docente" json:"cod_docente"`
	IDMateriaGrupo    int64     `db:"id_materia_grupo" json:"id_materia_grupo"`
	HrsAsignadas      int       `db:"hrs_asignadas" json:"hrs_asignadas"`
	Activo            bool      `db:"activo" json:"activo"`
	FechaAsignacion   time.Time `db:"fecha_asignacion" json:"fecha_asignacion"`
	FechaModificacion time.Time `db:"fecha_modificacion" json:"fecha_modificacion"`
}

// AsignacionDetalle enriches an assignment with display fields.
type AsignacionDetalle struct {
	AsignacionDocente
	DocenteNombre   string `db:"docente_nombre" json:"docente"`
	MateriaSigla    string `db:"materia_sigla" json:"materia_sigla"`
	MateriaNombre   string `db:"materia_nombre" json:"materia"`
	GrupoNombre     string `db:"grupo_nombre" json:"grupo"`
	GestionSemestre string `db:"gestion_semestre" json:"gestion_semestre"`
	GestionAnio     int    `db:"gestion_anio" json:"gestion_anio"`
}

// AsignacionFilter narrows assignment listings.
type AsignacionFilter struct {
	IDGestion  *int64
	CodDocente *int64
}
