package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type excelRow struct {
	Rank   int      `excel:"排名"`
	Title  string   `excel:"作品"`
	Score  *float64 `excel:"平均分"`
	hidden string
	Skip   string `excel:"-"`
}

func TestExportToExcel(t *testing.T) {
	score := 90.5
	rows := []excelRow{
		{Rank: 1, Title: "A", Score: &score, hidden: "x", Skip: "y"},
		{Rank: 2, Title: "B"},
	}

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, ExportToExcel(f, "leaderboard", rows))

	require.Equal(t, []string{"leaderboard"}, f.GetSheetList())

	got, err := f.GetRows("leaderboard")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"排名", "作品", "平均分"},
		{"1", "A", "90.5"},
		{"2", "B"},
	}, got)
}

func TestExportToExcelRejectsNonStructSlice(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.Error(t, ExportToExcel(f, "", []int{1, 2}))
	require.Error(t, ExportToExcel(f, "", "not a slice"))
}

func TestExportToExcelEmptySliceWritesHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, ExportToExcel(f, "", []excelRow{}))

	got, err := f.GetRows(defaultSheet)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"排名", "作品", "平均分"}}, got)
}
