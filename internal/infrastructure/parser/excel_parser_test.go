package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func buildWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Référence interne", "Coût"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"REF-1", "12,5"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"REF-2"}))

	_, err := f.NewSheet("Clients")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Clients", "A2", &[]interface{}{"Nom", "Téléphone", "Email"}))
	require.NoError(t, f.SetSheetRow("Clients", "A3", &[]interface{}{"Awa Diop", "771234567", "awa@example.sn"}))
	return f
}

func TestReadSheetFromBytes(t *testing.T) {
	f := buildWorkbook(t)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	p := &excelParser{log: zap.NewNop()}

	sheet, err := p.ReadSheetFromBytes(context.Background(), buf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", sheet.Name)
	assert.Equal(t, []string{"Référence interne", "Coût"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"REF-1", "12,5"}, sheet.Rows[0])
	// short rows are padded to the header width
	assert.Equal(t, []string{"REF-2", ""}, sheet.Rows[1])
	assert.Equal(t, []int{2, 4}, sheet.Lines)

	clients, err := p.ReadSheetFromBytes(context.Background(), buf.Bytes(), "clients")
	require.NoError(t, err)
	assert.Equal(t, "Clients", clients.Name)
	assert.Equal(t, []string{"Nom", "Téléphone", "Email"}, clients.Header)
	require.Len(t, clients.Rows, 1)
	assert.Equal(t, 3, clients.Line(0))

	_, err = p.ReadSheetFromBytes(context.Background(), buf.Bytes(), "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Clients")
}

func TestReadSheetNumberCells(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Référence", "Coût", "Note"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"BX650", 12.345, "12.345"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"DS-2CD1123", 0.125, ""}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := (&excelParser{log: zap.NewNop()}).ReadSheetFromBytes(context.Background(), buf.Bytes(), "")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)

	raw, ok := sheet.Number(0, 1)
	assert.True(t, ok)
	assert.Equal(t, "12.345", raw)
	raw, ok = sheet.Number(1, 1)
	assert.True(t, ok)
	assert.Equal(t, "0.125", raw)

	_, ok = sheet.Number(0, 0)
	assert.False(t, ok, "text cells are not numbers")
	_, ok = sheet.Number(0, 2)
	assert.False(t, ok, "numeric-looking text stays text")
	_, ok = sheet.Number(5, 1)
	assert.False(t, ok)
}

func TestReadSheetByIndex(t *testing.T) {
	buf, err := buildWorkbook(t).WriteToBuffer()
	require.NoError(t, err)
	p := &excelParser{log: zap.NewNop()}

	sheet, err := p.ReadSheetFromBytes(context.Background(), buf.Bytes(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Clients", sheet.Name)

	sheet, err = p.ReadSheetFromBytes(context.Background(), buf.Bytes(), " 0 ")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", sheet.Name)

	_, err = p.ReadSheetFromBytes(context.Background(), buf.Bytes(), "2")
	assert.Error(t, err)
	_, err = p.ReadSheetFromBytes(context.Background(), buf.Bytes(), "-1")
	assert.Error(t, err)
}

func TestSelectSheetPrefersName(t *testing.T) {
	name, err := selectSheet([]string{"Tarifs", "0"}, "0")
	require.NoError(t, err)
	assert.Equal(t, "0", name)
}

func TestReadSheetFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.xlsx")
	require.NoError(t, buildWorkbook(t).SaveAs(path))

	sheet, err := NewExcelParser(nil).ReadSheet(context.Background(), path, "")
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 2)
}

func TestReadSheetCSV(t *testing.T) {
	dir := t.TempDir()

	comma := filepath.Join(dir, "costs.csv")
	require.NoError(t, os.WriteFile(comma, []byte("sku,cost\nA-1,\"1,5\"\n\nB-2,3\n"), 0o644))
	sheet, err := NewExcelParser(nil).ReadSheet(context.Background(), comma, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sku", "cost"}, sheet.Header)
	assert.Equal(t, [][]string{{"A-1", "1,5"}, {"B-2", "3"}}, sheet.Rows)
	assert.Nil(t, sheet.Numbers)

	semi := filepath.Join(dir, "clients.csv")
	require.NoError(t, os.WriteFile(semi, []byte("nom;ville\nAwa;Dakar,Plateau\n"), 0o644))
	sheet, err = NewExcelParser(nil).ReadSheet(context.Background(), semi, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"nom", "ville"}, sheet.Header)
	assert.Equal(t, [][]string{{"Awa", "Dakar,Plateau"}}, sheet.Rows)
}

func TestReadSheetEmpty(t *testing.T) {
	p := &excelParser{log: zap.NewNop()}
	_, err := p.buildSheet("empty", [][]string{{"", " "}, {}}, nil)
	require.Error(t, err)
}
