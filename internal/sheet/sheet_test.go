package sheet

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricecompare/internal/catalog"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecodeWorkbookKeepsLayout(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Lista de precios Local Centro"},
		{"Actualizado al 01/03"},
		{"Código", "Nombre", "Stock", "Costo U.C.", "Costo neto", "Precio de Venta", "Precio Sugerido", "Porcentaje de Venta", "Familia"},
		{"X1", "Widget", 5, 80, 100, 150, 160, 0.5, "Tools"},
		{"X2", "Gadget", -2, 1.25, 2.5, 3, 3, 0.2, "Misc"},
	})
	raw, err := NewDecoder().Decode("Centro.xlsx", data)
	require.NoError(t, err)
	require.Len(t, raw.Rows, 5)

	records, err := catalog.Normalize(raw, catalog.SourceName("Centro.xlsx"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Centro", records[0].Source)
	assert.Equal(t, 5.0, records[0].Stock)
	assert.Equal(t, 100.0, records[0].NetCost)
	assert.InDelta(t, 50.0, records[0].CurrentMarginPercent, 1e-9)
	assert.Equal(t, -2.0, records[1].Stock)
	assert.Equal(t, 2.5, records[1].NetCost)
	assert.Equal(t, "Misc", records[1].Category)
}

func TestDecodeCSV(t *testing.T) {
	data := "Lista\nNorte\nCódigo,Nombre,Stock,Costo neto,Precio de Venta,Familia\nA1,\"Martillo, grande\",3,10,12,Herramientas\n"
	raw, err := NewDecoder().Decode("norte.CSV", []byte(data))
	require.NoError(t, err)

	records, err := catalog.Normalize(raw, "norte")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Martillo, grande", records[0].Name)
	assert.Equal(t, 12.0, records[0].SuggestedPrice)
}

func TestDecodeLegacyWorkbook(t *testing.T) {
	data, err := os.ReadFile("testdata/store.xls")
	require.NoError(t, err)

	raw, err := NewDecoder().Decode("Store.xls", data)
	require.NoError(t, err)
	require.Len(t, raw.Rows, 5)
	assert.Equal(t, []string{"Código", "Nombre", "Stock", "Costo neto", "Precio de Venta", "Familia"}, raw.Rows[2])

	records, err := catalog.Normalize(raw, catalog.SourceName("Store.xls"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Store", records[0].Source)
	assert.Equal(t, "X1", records[0].Code)
	assert.Equal(t, 5.0, records[0].Stock)
	assert.InDelta(t, 50.0, records[0].CurrentMarginPercent, 1e-9)
	assert.Equal(t, "Tornillo", records[1].Name)
	assert.Equal(t, -3.5, records[1].Stock)
	assert.Equal(t, 0.25, records[1].NetCost)
	assert.Equal(t, "Ferretería", records[1].Category)
}

func TestDecodeFailures(t *testing.T) {
	_, err := NewDecoder().Decode("broken.xlsx", []byte("definitely not a zip archive"))
	require.Error(t, err)

	_, err = NewDecoder().Decode("broken.xls", []byte("definitely not a compound document"))
	require.Error(t, err)

	_, err = NewDecoder().Decode("empty.csv", nil)
	require.ErrorIs(t, err, ErrEmptySheet)
}

func testGrid() catalog.Grid {
	return catalog.Grid{
		Header: []string{"Código", "Nombre", "Categoría", "A Stock", "A Costo", "A Venta", "Porcentaje Ganancia Actual", "Precio Sugerido Calculado"},
		Rows: [][]any{
			{"X1", "Widget", "Tools", 5.0, 100.0, 150.0, "50.00%", "125.00"},
			{"Y2", "Gadget", "Misc", "-", "-", "-", "0.00%", "4.00"},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testGrid(), "Comparacion Precios"))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, "Comparacion Precios", f.GetSheetName(0))
	rows, err := f.GetRows("Comparacion Precios")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, testGrid().Header, rows[0])
	assert.Equal(t, []string{"X1", "Widget", "Tools", "5", "100", "150", "50.00%", "125.00"}, rows[1])
	assert.Equal(t, "-", rows[2][3])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testGrid()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Código,Nombre,Categoría,A Stock,A Costo,A Venta,Porcentaje Ganancia Actual,Precio Sugerido Calculado", lines[0])
	assert.Equal(t, "X1,Widget,Tools,5,100,150,50.00%,125.00", lines[1])
	assert.Equal(t, "Y2,Gadget,Misc,-,-,-,0.00%,4.00", lines[2])
}
