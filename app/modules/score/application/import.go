package scoreservice

import (
	"context"
	"errors"
	"strings"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	"github.com/Black-And-White-Club/tripscore/app/modules/score/infrastructure/parsers"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// Import parses a sheet and upserts every line that validates. Invalid lines
// are reported in the returned ImportReport. An unavailable store stops the
// import; lines saved before the failure stay saved.
func (l *ScoreLedger) Import(ctx context.Context, req ImportRequest) (ImportReport, error) {
	report := ImportReport{Saved: []scoredomain.RoundScore{}, Errors: []RowError{}}
	if len(req.Data) == 0 {
		return report, ErrEmptySheet
	}
	if req.DefaultDate != "" {
		if err := l.calendar.Validate(req.DefaultDate); err != nil {
			return report, err
		}
	}

	parser, err := l.parsers.GetParser(req.Filename)
	if err != nil {
		return report, shared.NewValidationError("file", req.Filename, err.Error())
	}
	sheet, err := parser.Parse(req.Data)
	if err != nil {
		return report, shared.NewValidationError("file", req.Filename, err.Error())
	}

	for _, row := range sheet.Rows {
		rec, err := l.importRow(ctx, row, sheet, req.DefaultDate)
		if err == nil {
			report.Saved = append(report.Saved, rec)
			continue
		}
		if errors.Is(err, store.ErrUnavailable) {
			return report, err
		}
		re := RowError{Line: row.Line, Player: row.Player, Error: err.Error()}
		if ve, ok := shared.AsValidationError(err); ok {
			re.Field = ve.Field
			re.Error = ve.Reason
		}
		report.Errors = append(report.Errors, re)
	}

	l.logger.InfoContext(ctx, "Score sheet imported",
		attr.ExtractCorrelationID(ctx),
		attr.String("file", req.Filename),
		attr.Int("saved", len(report.Saved)),
		attr.Int("rejected", len(report.Errors)),
	)
	return report, nil
}

func (l *ScoreLedger) importRow(ctx context.Context, row parsers.ScoreRow, sheet *parsers.ParsedSheet, defaultDate string) (scoredomain.RoundScore, error) {
	if row.Err != nil {
		return scoredomain.RoundScore{}, shared.NewValidationError("line", row.Player, row.Err.Error())
	}
	playerID, err := resolvePlayer(l.roster.Roster(), row.Player)
	if err != nil {
		return scoredomain.RoundScore{}, err
	}
	date := row.Date
	if date == "" {
		date = defaultDate
	}
	if date == "" {
		return scoredomain.RoundScore{}, shared.NewValidationError("date", "", "line has no date and no default date was given")
	}

	if row.Strokes != nil {
		holes := make([]scoredomain.HoleInput, len(row.Strokes))
		for i, s := range row.Strokes {
			holes[i] = scoredomain.HoleInput{Hole: i + 1, Strokes: s}
			if i < len(sheet.Par) {
				holes[i].Par = sheet.Par[i]
			}
			if i < len(sheet.StrokeIndex) {
				holes[i].StrokeIndex = sheet.StrokeIndex[i]
			}
		}
		return l.ScoreHoles(ctx, playerID, date, holes)
	}

	return l.Upsert(ctx, scoredomain.RoundScore{
		PlayerID:        playerID,
		Date:            date,
		FrontNinePoints: deref(row.FrontNine),
		BackNinePoints:  deref(row.BackNine),
	})
}

// resolvePlayer accepts a roster id or a case-insensitive player name.
func resolvePlayer(roster *rosterdomain.Roster, v string) (string, error) {
	if roster.Contains(v) {
		return v, nil
	}
	for _, p := range roster.Players() {
		if strings.EqualFold(p.Name, v) {
			return p.ID, nil
		}
	}
	return "", shared.NewValidationError("player_id", v, "not on the roster")
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
