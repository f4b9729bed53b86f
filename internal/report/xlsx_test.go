package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportXLSX(sampleReport(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	for _, name := range []string{"Metrics", "Exploratory", "Histogram", "Charts"} {
		assert.Contains(t, f.Sheet, name)
	}

	metrics := f.Sheet["Metrics"]
	assert.Equal(t, "Metric", metrics.Rows[0].Cells[0].String())
	assert.Equal(t, "Accuracy", metrics.Rows[1].Cells[0].String())
	acc, err := metrics.Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, acc, 1e-9)

	hist := f.Sheet["Histogram"]
	require.Len(t, hist.Rows, 3)
	assert.Equal(t, "legitimate", hist.Rows[0].Cells[1].String())
	assert.Equal(t, "25-49", hist.Rows[2].Cells[0].String())
	n, err := hist.Rows[2].Cells[2].Int()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	charts := f.Sheet["Charts"]
	require.Len(t, charts.Rows, 4)
	assert.Equal(t, "failed", charts.Rows[2].Cells[2].String())
}

func TestExportXLSX_BadPath(t *testing.T) {
	err := ExportXLSX(sampleReport(), filepath.Join(t.TempDir(), "missing", "report.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: save xlsx")
}
