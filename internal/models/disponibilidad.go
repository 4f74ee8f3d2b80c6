package models

// Availability states for a classroom in a given day/time block. Maintenance
// always wins over occupancy.
const (
	EstadoDisponible   = "DISPONIBLE"
	EstadoOcupada      = "OCUPADA"
	EstadoNoDisponible = "NO DISPONIBLE"
)

// Classification reasons surfaced to the caller.
const (
	MotivoMantenimiento = "En mantenimiento"
	MotivoClaseAsignada = "Clase asignada"
)

// AulaDisponibilidad classifies one classroom for a (día, bloque) query.
type AulaDisponibilidad struct {
	IDAula    int64   `json:"id_aula"`
	Nombre    string  `json:"nombre"`
	Capacidad int     `json:"capacidad"`
	Piso      int     `json:"piso"`
	TipoAula  *string `json:"tipo_aula,omitempty"`
	Estado    string  `json:"estado"`
	Motivo    *string `json:"motivo,omitempty"`
}

// ResumenDisponibilidad aggregates per-status counts.
type ResumenDisponibilidad struct {
	Total         int `json:"total"`
	Disponibles   int `json:"disponibles"`
	Ocupadas      int `json:"ocupadas"`
	NoDisponibles int `json:"no_disponibles"`
}

// ConsultaDisponibilidad is the full resolver result.
type ConsultaDisponibilidad struct {
	Aulas   []AulaDisponibilidad  `json:"aulas"`
	Resumen ResumenDisponibilidad `json:"resumen"`
	Mensaje string                `json:"mensaje,omitempty"`
}
