package models

import "time"

// Bitácora action constants for the mutations the API records.
const (
	AccionLogin                = "LOGIN"
	AccionLogout               = "LOGOUT"
	AccionCambioPassword       = "CAMBIO_PASSWORD"
	AccionAsignarDocente       = "ASIGNAR_DOCENTE"
	AccionActualizarAsignacion = "ACTUALIZAR_ASIGNACION"
	AccionDesactivarAsignacion = "DESACTIVAR_ASIGNACION"
	AccionConsultaDisponib     = "CONSULTA_DISPONIBILIDAD"
	AccionCrear                = "CREAR"
	AccionActualizar           = "ACTUALIZAR"
	AccionDesactivar           = "DESACTIVAR"
	AccionReactivar            = "REACTIVAR"
	AccionRegistrarAsistencia  = "REGISTRAR_ASISTENCIA"
	AccionRevisarJustificacion = "REVISAR_JUSTIFICACION"
	AccionGenerarReporte       = "GENERAR_REPORTE"
)

// Bitacora represents an audit trail record.
type Bitacora struct {
	ID          string    `db:"id" json:"id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	Accion      string    `db:"accion" json:"accion"`
	Recurso     string    `db:"recurso" json:"recurso"`
	RecursoID   *string   `db:"recurso_id" json:"recurso_id,omitempty"`
	Descripcion string    `db:"descripcion" json:"descripcion"`
	Detalle     []byte    `db:"detalle" json:"detalle,omitempty"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// BitacoraFilter narrows audit log listings.
type BitacoraFilter struct {
	UserID   string
	Accion   string
	Desde    *time.Time
	Hasta    *time.Time
	Page     int
	PageSize int
}
