package parsers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func holeHeader() []any {
	h := []any{"Player", "Date"}
	for i := 1; i <= 18; i++ {
		h = append(h, fmt.Sprintf("%d", i))
	}
	return h
}

func holeRow(label string, date string, v int) []any {
	r := []any{label, date}
	for i := 0; i < 18; i++ {
		r = append(r, v)
	}
	return r
}

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "scores.csv", want: "csv"},
		{name: "xlsx file", filename: "Scores.XLSX", want: "xlsx"},
		{name: "no extension", filename: "upload", want: "xlsx"},
		{name: "unsupported file", filename: "scores.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := parser.(*CSVParser)
				require.True(t, ok)
			case "xlsx":
				_, ok := parser.(*XLSXParser)
				require.True(t, ok)
			}
		})
	}
}

func TestXLSXParser_PointsSheet(t *testing.T) {
	data := buildXLSX(t, [][]any{
		{"Scotland 2025"},
		{"Player", "Date", "Front9", "Back9"},
		{"Peter Dahl", "2025-09-25", 18, 16},
		{"2", "2025-09-25", 20, "x"},
		{"", "", "", ""},
		{"3", "", 12, 14},
	})

	sheet, err := NewXLSXParser().Parse(data)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 3)

	first := sheet.Rows[0]
	assert.Equal(t, "Peter Dahl", first.Player)
	assert.Equal(t, "2025-09-25", first.Date)
	require.NoError(t, first.Err)
	assert.Equal(t, 18, *first.FrontNine)
	assert.Equal(t, 16, *first.BackNine)
	assert.Equal(t, 3, first.Line)

	assert.Error(t, sheet.Rows[1].Err, "non-numeric back9")
	assert.Equal(t, "", sheet.Rows[2].Date)
}

func TestXLSXParser_HoleSheet(t *testing.T) {
	par := holeRow("Par", "", 4)
	par[2] = 3
	data := buildXLSX(t, [][]any{
		holeHeader(),
		par,
		holeRow("1", "2025-09-26", 5),
		holeRow("4", "26.09.2025", 4),
	})

	sheet, err := NewXLSXParser().Parse(data)
	require.NoError(t, err)
	require.Len(t, sheet.Par, 18)
	assert.Equal(t, 3, sheet.Par[0])
	assert.Equal(t, 4, sheet.Par[17])
	require.Len(t, sheet.Rows, 2)
	assert.Len(t, sheet.Rows[0].Strokes, 18)
	assert.Nil(t, sheet.Rows[0].FrontNine)
	assert.Equal(t, "2025-09-26", sheet.Rows[1].Date)
}

func TestXLSXParser_Errors(t *testing.T) {
	_, err := NewXLSXParser().Parse([]byte("not a zip"))
	assert.Error(t, err)

	_, err = NewXLSXParser().Parse(buildXLSX(t, [][]any{{"Name", "Points"}, {"A", 3}}))
	assert.ErrorContains(t, err, "front9 and back9")

	_, err = NewXLSXParser().Parse(buildXLSX(t, [][]any{{"Score"}, {3}}))
	assert.ErrorContains(t, err, "header")
}

func TestCSVParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErr  bool
		wantRows int
		wantSI   bool
	}{
		{
			name:     "points with BOM",
			data:     "\xef\xbb\xbfplayer,date,front9,back9\n1,2025-09-25,18,17\n2,9/25/25,10,11\n",
			wantRows: 2,
		},
		{
			name: "holes with stroke index",
			data: "name," + strings.Join(seq("h"), ",") + "\n" +
				"SI," + strings.Join(seq(""), ",") + "\n" +
				"Johan Dahl," + strings.Repeat("4,", 17) + "4\n",
			wantRows: 1,
			wantSI:   true,
		},
		{
			name:    "no players",
			data:    "player,front9,back9\n",
			wantErr: true,
		},
		{
			name:    "bad quoting",
			data:    "player,front9\n\"unterminated,1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := NewCSVParser().Parse([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sheet.Rows, tt.wantRows)
			for _, r := range sheet.Rows {
				assert.NoError(t, r.Err)
			}
			if tt.wantSI {
				assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}, sheet.StrokeIndex)
			}
		})
	}
}

func seq(prefix string) []string {
	out := make([]string, 18)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

func TestFindHoleColumns(t *testing.T) {
	header := []string{"Player", "Hole 1", "h2"}
	assert.Nil(t, findHoleColumns(header), "incomplete set")

	full := append([]string{"Player"}, seq("Hole ")...)
	idx := findHoleColumns(full)
	require.Len(t, idx, 18)
	assert.Equal(t, 1, idx[0])
	assert.Equal(t, 18, idx[17])
}
