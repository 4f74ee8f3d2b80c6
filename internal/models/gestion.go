package models

import (
	"fmt"
	"time"
)

// Gestion models an academic period. Exactly one gestión is active
// system-wide; every period-scoped computation is relative to it.
type Gestion struct {
	ID            int64     `db:"id_gestion" json:"id_gestion"`
	Anio          int       `db:"anio" json:"anio"`
	Semestre      string    `db:"semestre" json:"semestre"`
	Activo        bool      `db:"activo" json:"activo"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fecha_creacion"`
}

// Etiqueta returns the display label, e.g. "II/2025".
func (g Gestion) Etiqueta() string {
	return fmt.Sprintf("%s/%d", g.Semestre, g.Anio)
}
