package standingsservice

import (
	"context"
	"fmt"
	"strings"

	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/xuri/excelize/v2"
)

const (
	SheetWinners = "Winners"
	SheetPrizes  = "Prize Money"
	SheetOverall = "Overall"

	maxSheetName = 31
)

// ExportWorkbook writes the current standings as an XLSX workbook.
func (s *StandingsService) ExportWorkbook(ctx context.Context) ([]byte, error) {
	_, span := s.telemetry.Tracer.Start(ctx, "ExportWorkbook")
	defer span.End()

	engine, res := s.snapshot()

	var days []DaySheet
	for _, d := range s.calendar.Days() {
		sheet := DaySheet{Day: d}
		for _, seg := range competition.Segments {
			lb, err := engine.Leaderboard(d.Date, seg)
			if err != nil {
				return nil, err
			}
			sheet.Leaderboards = append(sheet.Leaderboards, lb)
		}
		days = append(days, sheet)
	}
	return BuildWorkbook(res, engine.OverallLeaderboard(), days)
}

// DaySheet is the content of one per-day sheet.
type DaySheet struct {
	Day          competition.Day
	Leaderboards []standingsdomain.Leaderboard
}

// BuildWorkbook lays out the winners, prize totals, overall leaderboard and
// one sheet per day.
func BuildWorkbook(res standingsdomain.Results, overall standingsdomain.Leaderboard, days []DaySheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetWinners); err != nil {
		return nil, err
	}
	rows := [][]any{{"Date", "Course", "Competition", "Winner", "Prize"}}
	for _, w := range res.Winners {
		rows = append(rows, []any{w.Date, w.Course, w.Competition, w.WinnerName, w.Prize})
	}
	for _, st := range res.Status {
		if !st.Determined {
			rows = append(rows, []any{st.Date, st.Course, st.Competition, "Not yet determined", ""})
		}
	}
	if err := writeRows(f, SheetWinners, rows, header); err != nil {
		return nil, err
	}

	rows = [][]any{{"Player", "Wins", "Amount (" + res.Currency + ")"}}
	for _, t := range res.Totals {
		rows = append(rows, []any{t.Name, t.Wins, t.Amount})
	}
	rows = append(rows,
		[]any{},
		[]any{"Prizes awarded", "", res.PrizesAwarded},
		[]any{"Prize pool", "", res.PrizePool},
		[]any{"Competitions determined", fmt.Sprintf("%d / %d", res.CompetitionsDetermined, res.CompetitionsTotal)},
	)
	if err := addSheet(f, SheetPrizes, rows, header); err != nil {
		return nil, err
	}

	if err := addSheet(f, SheetOverall, leaderboardRows(overall, "Total"), header); err != nil {
		return nil, err
	}

	for i, d := range days {
		rows = [][]any{{d.Day.Name, d.Day.Course, d.Day.Date}}
		for _, lb := range d.Leaderboards {
			rows = append(rows, []any{})
			rows = append(rows, leaderboardRows(lb, string(lb.Segment))...)
		}
		if err := addSheet(f, daySheetName(i, d.Day), rows, header); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func leaderboardRows(lb standingsdomain.Leaderboard, label string) [][]any {
	rows := [][]any{{"Rank", "Player", label}}
	for _, e := range lb.Entries {
		rows = append(rows, []any{e.Rank, e.Name, e.Points})
	}
	return rows
}

func addSheet(f *excelize.File, name string, rows [][]any, header int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", name, err)
	}
	return writeRows(f, name, rows, header)
}

func writeRows(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetCellStyle(sheet, "A1", "E1", header)
}

// daySheetName builds "Day 1 Kilspindie" within the sheet name limits.
func daySheetName(i int, d competition.Day) string {
	name := fmt.Sprintf("Day %d %s", i+1, d.Name)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if len([]rune(name)) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}
