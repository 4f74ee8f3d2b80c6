package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Docente", "Materia", "Estado"},
		Rows: []map[string]string{
			{"Docente": "María Condori", "Materia": "Cálculo I", "Estado": "PRESENTE"},
			{"Docente": "Juan Pérez", "Materia": "Física II"},
		},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))

	body := string(bytes.TrimPrefix(out, utf8BOM))
	assert.Contains(t, body, "Docente,Materia,Estado")
	assert.Contains(t, body, "María Condori,Cálculo I,PRESENTE")
	assert.Contains(t, body, "Juan Pérez,Física II,\n")
}

func TestCSVExporterRenderSinCabeceras(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
