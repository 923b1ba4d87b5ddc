package fileextract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, fill func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	if fill != nil {
		fill(f)
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestExtractUnsupportedType(t *testing.T) {
	text, ok := Extract([]byte("hello"), "photo.jpg", "image/jpeg")
	assert.False(t, ok)
	assert.Equal(t, "", text)
}

func TestExtractMalformedPDF(t *testing.T) {
	text, ok := Extract([]byte("not a pdf at all"), "broken.pdf", "application/pdf")
	assert.False(t, ok)
	assert.Equal(t, "", text)
}

func TestExtractMalformedSpreadsheet(t *testing.T) {
	_, ok := Extract([]byte{0x00, 0x01, 0x02}, "broken.xlsx", "")
	assert.False(t, ok)
}

func TestExtractSpreadsheetRows(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "現場名"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "住所"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "〇〇ビル"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", "東京都港区1-2-3"))
	})

	text, ok := Extract(data, "genba.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	require.True(t, ok)
	lines := strings.Split(text, "\n")
	assert.Equal(t, "【シート: Sheet1】", lines[0])
	assert.Equal(t, "現場名,住所", lines[1])
	assert.Equal(t, "〇〇ビル,東京都港区1-2-3", lines[2])
}

func TestExtractSpreadsheetSkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "現場名"))
		// 2行目は空白のまま、3行目にデータ
		require.NoError(t, f.SetCellValue("Sheet1", "A3", "〇〇ビル"))
	})

	text, ok := Extract(data, "genba.xlsx", "")
	require.True(t, ok)
	assert.NotContains(t, text, "\n\n")
	assert.Contains(t, text, "〇〇ビル")
}

func TestExtractEmptySpreadsheetHeaderOnly(t *testing.T) {
	data := buildWorkbook(t, nil)

	text, ok := Extract(data, "empty.xls", "application/vnd.ms-excel")
	require.True(t, ok)
	assert.Equal(t, "【シート: Sheet1】", text)
}

func TestExtractDispatchByExtension(t *testing.T) {
	data := buildWorkbook(t, nil)
	// content-type が空でも拡張子で判定する
	_, ok := Extract(data, "報告書.XLSX", "")
	assert.True(t, ok)
}
