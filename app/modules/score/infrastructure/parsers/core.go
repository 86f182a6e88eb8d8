package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

const holes = 18

var (
	playerColumns = []string{"player", "player_id", "playerid", "name", "username"}
	dateColumns   = []string{"date", "day"}
	frontColumns  = []string{"front9", "front_9", "front", "front_nine", "front nine", "out"}
	backColumns   = []string{"back9", "back_9", "back", "back_nine", "back nine", "in"}
)

// dateLayouts are tried in order for the date column; spreadsheet apps
// format date cells in the locale of whoever saved the file.
var dateLayouts = []string{
	competition.DateLayout,
	"2006/01/02",
	"02.01.2006",
	"1/2/06",
	"1/2/2006",
	"01-02-06",
}

// parseRows turns raw cells into a ParsedSheet.
func parseRows(rows [][]string) (*ParsedSheet, error) {
	headerIdx := -1
	for i, row := range rows {
		if findColumn(row, playerColumns) >= 0 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet has no header row with a player column")
	}

	header := rows[headerIdx]
	playerIdx := findColumn(header, playerColumns)
	dateIdx := findColumn(header, dateColumns)
	frontIdx := findColumn(header, frontColumns)
	backIdx := findColumn(header, backColumns)
	holeIdx := findHoleColumns(header)

	hasHoles := len(holeIdx) == holes
	if !hasHoles && (frontIdx < 0 || backIdx < 0) {
		return nil, fmt.Errorf("sheet needs front9 and back9 columns or hole columns 1-18")
	}

	sheet := &ParsedSheet{}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		label := strings.ToLower(cell(row, 0))
		switch {
		case hasHoles && label == "par":
			vals, err := intCells(row, holeIdx)
			if err != nil {
				return nil, fmt.Errorf("invalid par row at line %d: %w", i+1, err)
			}
			sheet.Par = vals
			continue
		case hasHoles && (label == "si" || label == "index" || label == "stroke index" || label == "hcp"):
			vals, err := intCells(row, holeIdx)
			if err != nil {
				return nil, fmt.Errorf("invalid stroke index row at line %d: %w", i+1, err)
			}
			sheet.StrokeIndex = vals
			continue
		}

		player := cell(row, playerIdx)
		if player == "" {
			continue
		}
		sr := ScoreRow{Line: i + 1, Player: player}

		if dateIdx >= 0 {
			if raw := cell(row, dateIdx); raw != "" {
				d, err := normalizeDate(raw)
				if err != nil {
					sr.Err = err
					sheet.Rows = append(sheet.Rows, sr)
					continue
				}
				sr.Date = d
			}
		}

		switch {
		case hasHoles && anyCell(row, holeIdx):
			sr.Strokes, sr.Err = intCells(row, holeIdx)
		case frontIdx >= 0 && backIdx >= 0:
			sr.FrontNine, sr.Err = intCell(row, frontIdx, "front9")
			if sr.Err == nil {
				sr.BackNine, sr.Err = intCell(row, backIdx, "back9")
			}
		default:
			sr.Err = fmt.Errorf("line has no hole strokes")
		}
		sheet.Rows = append(sheet.Rows, sr)
	}

	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("no player rows found")
	}
	return sheet, nil
}

// findColumn returns the index of the first header cell matching one of the
// candidate names, case-insensitively.
func findColumn(header []string, candidates []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	return -1
}

// findHoleColumns maps holes 1-18 to column indexes. Headers may be "7",
// "h7" or "hole 7".
func findHoleColumns(header []string) []int {
	idx := make([]int, 0, holes)
	found := map[int]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "hole")
		h = strings.TrimPrefix(h, "h")
		n, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil || n < 1 || n > holes {
			continue
		}
		if _, dup := found[n]; !dup {
			found[n] = i
		}
	}
	for n := 1; n <= holes; n++ {
		i, ok := found[n]
		if !ok {
			return nil
		}
		idx = append(idx, i)
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func anyCell(row []string, idx []int) bool {
	for _, i := range idx {
		if v := cell(row, i); v != "" && v != "-" {
			return true
		}
	}
	return false
}

// intCells reads one integer per index. Empty or "-" cells are 0.
func intCells(row []string, idx []int) ([]int, error) {
	out := make([]int, len(idx))
	for n, i := range idx {
		v := cell(row, i)
		if v == "" || v == "-" {
			continue
		}
		x, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("hole %d: non-numeric value %q", n+1, v)
		}
		if x < 0 {
			return nil, fmt.Errorf("hole %d: negative value %d", n+1, x)
		}
		out[n] = x
	}
	return out, nil
}

func intCell(row []string, i int, name string) (*int, error) {
	v := cell(row, i)
	if v == "" {
		zero := 0
		return &zero, nil
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: non-numeric value %q", name, v)
	}
	return &x, nil
}

func normalizeDate(raw string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(competition.DateLayout), nil
		}
	}
	return "", fmt.Errorf("date %q is not a recognised date", raw)
}
