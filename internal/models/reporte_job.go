package models

import "time"

// Report job states.
const (
	ReporteJobPendiente  = "PENDIENTE"
	ReporteJobProcesando = "PROCESANDO"
	ReporteJobCompletado = "COMPLETADO"
	ReporteJobFallido    = "FALLIDO"
)

// Export formats.
const (
	FormatoCSV = "csv"
	FormatoPDF = "pdf"
)

// ReporteJob tracks an asynchronous attendance export.
type ReporteJob struct {
	ID        string     `db:"id" json:"id"`
	UserID    *string    `db:"user_id" json:"user_id,omitempty"`
	Formato   string     `db:"formato" json:"formato"`
	Estado    string     `db:"estado" json:"estado"`
	Filtros   []byte     `db:"filtros" json:"-"`
	Archivo   *string    `db:"archivo" json:"archivo,omitempty"`
	Error     *string    `db:"error" json:"error,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}
