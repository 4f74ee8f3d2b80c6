package models

import "time"

// Dia is reference data for weekdays.
type Dia struct {
	ID     int64  `db:"id_dia" json:"id_dia"`
	Nombre string `db:"nombre" json:"nombre"`
}

// BloqueHorario is a fixed time block within a day.
type BloqueHorario struct {
	ID         int64  `db:"id_bloque_horario" json:"id_bloque_horario"`
	Nombre     string `db:"nombre" json:"nombre"`
	HoraInicio string `db:"hora_inicio" json:"hora_inicio"`
	HoraFin    string `db:"hora_fin" json:"hora_fin"`
}

// TipoClase classifies scheduled sessions (teórica, práctica, laboratorio).
type TipoClase struct {
	ID     int64  `db:"id_tipo_clase" json:"id_tipo_clase"`
	Nombre string `db:"nombre" json:"nombre"`
}

// HorarioClase is a scheduled session occupying an aula on a day/time block.
type HorarioClase struct {
	ID            int64     `db:"id_horario_clase" json:"id_horario_clase"`
	IDAsignacion  int64     `db:"id_asignacion_docente" json:"id_asignacion_docente"`
	IDAula        int64     `db:"id_aula" json:"id_aula"`
	IDDia         int64     `db:"id_dia" json:"id_dia"`
	IDBloque      int64     `db:"id_bloque_horario" json:"id_bloque_horario"`
	IDTipoClase   int64     `db:"id_tipo_clase" json:"id_tipo_clase"`
	Activo        bool      `db:"activo" json:"activo"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fecha_creacion"`
}

// HorarioDetalle carries the display fields for schedule views.
type HorarioDetalle struct {
	HorarioClase
	DiaNombre     string `db:"dia_nombre" json:"dia"`
	BloqueNombre  string `db:"bloque_nombre" json:"bloque"`
	HoraInicio    string `db:"hora_inicio" json:"hora_inicio"`
	HoraFin       string `db:"hora_fin" json:"hora_fin"`
	AulaNombre    string `db:"aula_nombre" json:"aula"`
	TipoClase     string `db:"tipo_clase" json:"tipo_clase"`
	MateriaSigla  string `db:"materia_sigla" json:"materia_sigla"`
	MateriaNombre string `db:"materia_nombre" json:"materia_nombre"`
	GrupoNombre   string `db:"grupo_nombre" json:"grupo"`
}
