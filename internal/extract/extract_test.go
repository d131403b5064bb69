package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "countries.csv", "Country, ISO ,Region\nFrance,FRA, Europe \nGermany,DEU\n")

	frame, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Country", "ISO", "Region"}, frame.Headers, "headers are trimmed")
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "Europe", frame.Cell(0, "Region"), "cell values are trimmed")
	assert.Equal(t, "", frame.Cell(1, "Region"), "short rows pad to header width")
	assert.True(t, frame.HasHeader("ISO"))
	assert.False(t, frame.HasHeader("Population"))
}

func TestReadCSVEmptyFile(t *testing.T) {
	path := writeCSV(t, "empty.csv", "")

	_, err := ReadFile(path)
	var exErr *Error
	require.ErrorAs(t, err, &exErr)
	assert.Contains(t, exErr.Error(), "empty")
}

func TestReadXLSXFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks.xlsx")

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"Id", "Country", "2025"}))
	require.NoError(t, wb.SetSheetRow("Sheet1", "A2", &[]interface{}{1, "France", 10.5}))
	_, err := wb.NewSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, wb.SetSheetRow("Extra", "A1", &[]interface{}{"ignored"}))
	require.NoError(t, wb.SaveAs(path))

	frame, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Id", "Country", "2025"}, frame.Headers)
	require.Equal(t, 1, frame.Len())
	assert.Equal(t, "France", frame.Cell(0, "Country"))
	assert.Equal(t, "10.5", frame.Cell(0, "2025"))
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	path := writeCSV(t, "data.parquet", "x")

	_, err := ReadFile(path)
	var exErr *Error
	require.ErrorAs(t, err, &exErr)
	assert.Contains(t, exErr.Error(), "unsupported file type")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	var exErr *Error
	require.ErrorAs(t, err, &exErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
