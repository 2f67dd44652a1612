package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"赛事名称", "日期", "成绩"},
		{"杭州马拉松", "2024.11.03", "3:58:20"},
	})

	rows, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[1][0] != "杭州马拉松" {
		t.Errorf("rows[1][0] = %q", rows[1][0])
	}

	events, err := NormalizeSheet(rows, testNow, nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if events[0].Date != "2024-11-03" {
		t.Errorf("date = %q, want 2024-11-03", events[0].Date)
	}
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	if _, err := ReadWorkbook(strings.NewReader("plain text, not a zip")); err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
}
