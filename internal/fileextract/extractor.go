// Package fileextract は添付ファイルのバイナリから本文テキストを取り出す。
// PDF とスプレッドシートに対応し、未対応形式や壊れたファイルは「テキストなし」
// として返す。呼び出し元へエラーを伝播させないのが契約。
package fileextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// Extract はファイル内容からプレーンテキストを取り出す。戻り値の bool は
// テキストが得られたかどうかを示し、未対応形式とパース失敗はどちらも
// ("", false) に畳む。
func Extract(data []byte, filename, contentType string) (string, bool) {
	switch {
	case isPDF(filename, contentType):
		return extractPDF(data)
	case isSpreadsheet(filename, contentType):
		return extractSpreadsheet(data)
	default:
		return "", false
	}
}

func isPDF(filename, contentType string) bool {
	return contentType == "application/pdf" || strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func isSpreadsheet(filename, contentType string) bool {
	switch contentType {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel":
		return true
	}
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}

// extractPDF は全ページのプレーンテキストを連結する。レイアウトは保持しない。
// 一部ページのパース失敗は飛ばして続行する。
func extractPDF(data []byte) (text string, ok bool) {
	// PDF ライブラリは壊れた入力で panic することがある
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
	}
	return builder.String(), true
}

// extractSpreadsheet は各シートについてシート名のヘッダ行と、空白でない行の
// カンマ区切りテキストを出力する。データ行ゼロのシートはヘッダ行のみになる。
func extractSpreadsheet(data []byte) (string, bool) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		lines = append(lines, fmt.Sprintf("【シート: %s】", sheet))
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			if rowIsBlank(row) {
				continue
			}
			lines = append(lines, strings.Join(row, ","))
		}
	}
	return strings.Join(lines, "\n"), true
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
