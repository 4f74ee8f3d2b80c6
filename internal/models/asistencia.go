package models

import "time"

// Attendance states.
const (
	AsistenciaPresente = "PRESENTE"
	AsistenciaAusente  = "AUSENTE"
	AsistenciaRetraso  = "RETRASO"
)

// Registration origin.
const (
	RegistroManual     = "MANUAL"
	RegistroAutomatico = "AUTOMATICO"
)

// Justification review states.
const (
	JustificacionPendiente = "PENDIENTE"
	JustificacionAprobada  = "APROBADA"
	JustificacionRechazada = "RECHAZADA"
)

// Asistencia records a docente's attendance for one scheduled session on one
// date. One row per (horario, fecha).
type Asistencia struct {
	ID             int64     `db:"id_asistencia" json:"id_asistencia"`
	IDAsignacion   int64     `db:"id_asignacion_docente" json:"id_asignacion_docente"`
	IDHorarioClase int64     `db:"id_horario_clase" json:"id_horario_clase"`
	FechaRegistro  time.Time `db:"fecha_registro" json:"fecha_registro"`
	HoraRegistro   string    `db:"hora_registro" json:"hora_registro"`
	Estado         string    `db:"estado" json:"estado"`
	TipoRegistro   string    `db:"tipo_registro" json:"tipo_registro"`
	Observacion    *string   `db:"observacion" json:"observacion,omitempty"`
}

// AsistenciaDetalle is the flattened row used by listings and reports.
type AsistenciaDetalle struct {
	Asistencia
	CodDocente    int64  `db:"cod_docente" json:"cod_docente"`
	DocenteNombre string `db:"docente_nombre" json:"docente"`
	MateriaNombre string `db:"materia_nombre" json:"materia"`
	GrupoNombre   string `db:"grupo_nombre" json:"grupo"`
	DiaNombre     string `db:"dia_nombre" json:"dia"`
	BloqueNombre  string `db:"bloque_nombre" json:"bloque"`
}

// Justificacion is filed by a docente against an absence or late mark and
// reviewed by an autoridad.
type Justificacion struct {
	ID                 int64      `db:"id_justificacion" json:"id_justificacion"`
	IDAsistencia       int64      `db:"id_asistencia" json:"id_asistencia"`
	Motivo             string     `db:"motivo" json:"motivo"`
	EstadoRevision     string     `db:"estado_revision" json:"estado_revision"`
	ComentarioRevision *string    `db:"comentario_revision" json:"comentario_revision,omitempty"`
	RevisadoPor        *string    `db:"revisado_por" json:"revisado_por,omitempty"`
	FechaRevision      *time.Time `db:"fecha_revision" json:"fecha_revision,omitempty"`
	FechaCreacion      time.Time  `db:"fecha_creacion" json:"fecha_creacion"`
}

// ResumenAsistencia aggregates attendance counters per teacher for a gestión.
type ResumenAsistencia struct {
	CodDocente    int64  `db:"cod_docente" json:"cod_docente"`
	DocenteNombre string `db:"docente_nombre" json:"docente"`
	Presentes     int    `db:"presentes" json:"presentes"`
	Ausentes      int    `db:"ausentes" json:"ausentes"`
	Retrasos      int    `db:"retrasos" json:"retrasos"`
	Total         int    `db:"total" json:"total"`
}

// ReporteAsistenciaFiltro selects attendance rows for reporting. IDGestion is
// mandatory; the remaining filters narrow the result.
type ReporteAsistenciaFiltro struct {
	IDGestion   int64      `json:"id_gestion" validate:"required"`
	CodDocente  *int64     `json:"cod_docente,omitempty"`
	IDMateria   *int64     `json:"id_materia,omitempty"`
	IDGrupo     *int64     `json:"id_grupo,omitempty"`
	FechaInicio *time.Time `json:"fecha_inicio,omitempty"`
	FechaFin    *time.Time `json:"fecha_fin,omitempty"`
}
