package standingsdomain

import (
	"sort"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

// Engine computes standings over one immutable snapshot of the ledgers.
// Build a new Engine after every change.
type Engine struct {
	roster   *rosterdomain.Roster
	calendar *competition.Calendar
	rules    competition.Rules

	scores map[string]scoredomain.RoundScore
	shots  map[string]shotdomain.SpecialShot
	perDay map[string]int
}

// NewEngine indexes the snapshot. Records for players or days outside the
// roster and calendar are ignored; the ledgers never hold such records.
func NewEngine(
	roster *rosterdomain.Roster,
	calendar *competition.Calendar,
	rules competition.Rules,
	scores []scoredomain.RoundScore,
	shots []shotdomain.SpecialShot,
) *Engine {
	e := &Engine{
		roster:   roster,
		calendar: calendar,
		rules:    rules,
		scores:   make(map[string]scoredomain.RoundScore, len(scores)),
		shots:    make(map[string]shotdomain.SpecialShot, len(shots)),
		perDay:   make(map[string]int, calendar.Len()),
	}
	for _, s := range scores {
		if !roster.Contains(s.PlayerID) || !calendar.Contains(s.Date) {
			continue
		}
		s = s.Normalized()
		if _, dup := e.scores[s.Key()]; !dup {
			e.perDay[s.Date]++
		}
		e.scores[s.Key()] = s
	}
	for _, s := range shots {
		if !roster.Contains(s.PlayerID) || !calendar.Contains(s.Date) {
			continue
		}
		e.shots[s.Key()] = s
	}
	return e
}

// Leaderboard ranks every roster player for one day and segment. Players
// without a record score zero.
func (e *Engine) Leaderboard(date string, seg competition.Segment) (Leaderboard, error) {
	if err := e.calendar.Validate(date); err != nil {
		return Leaderboard{}, err
	}
	if _, err := competition.ParseSegment(string(seg)); err != nil {
		return Leaderboard{}, err
	}
	day, _ := e.calendar.Day(date)

	entries := make([]Entry, 0, e.roster.Size())
	for _, p := range e.roster.Players() {
		entry := Entry{PlayerID: p.ID, Name: p.Name}
		if s, ok := e.scores[scoredomain.Key(date, p.ID)]; ok {
			entry.Points = s.Points(seg)
			entry.Recorded = true
		}
		entries = append(entries, entry)
	}
	return Leaderboard{
		Date:    date,
		Course:  day.Course,
		Segment: seg,
		Entries: e.rank(entries),
	}, nil
}

// OverallLeaderboard ranks every roster player by total points over all days.
func (e *Engine) OverallLeaderboard() Leaderboard {
	entries := make([]Entry, 0, e.roster.Size())
	for _, p := range e.roster.Players() {
		entry := Entry{PlayerID: p.ID, Name: p.Name}
		for _, d := range e.calendar.Days() {
			if s, ok := e.scores[scoredomain.Key(d.Date, p.ID)]; ok {
				entry.Points += s.TotalPoints
				entry.Recorded = true
			}
		}
		entries = append(entries, entry)
	}
	return Leaderboard{
		Date:    competition.OverallDate,
		Course:  e.calendar.OverallCourse(),
		Segment: competition.SegmentFullRound,
		Entries: e.rank(entries),
	}
}

// rank sorts entries (which arrive in roster order) by points descending.
// Equal points keep roster order.
func (e *Engine) rank(entries []Entry) []Entry {
	index := func(id string) int {
		i, _ := e.roster.Index(id)
		return i
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return index(entries[i].PlayerID) < index(entries[j].PlayerID)
	})
	for i := range entries {
		entries[i].Rank = i + 1
		if e.rules.RankPolicy == competition.RankShared && i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
		}
	}
	return entries
}

// Completion reports whether every roster player has a record for date.
func (e *Engine) Completion(date string) (DayCompletion, error) {
	if err := e.calendar.Validate(date); err != nil {
		return DayCompletion{}, err
	}
	return e.dayCompletion(date), nil
}

func (e *Engine) dayCompletion(date string) DayCompletion {
	c := DayCompletion{
		Date:     date,
		Recorded: e.perDay[date],
		Expected: e.roster.Size(),
		Missing:  []string{},
	}
	for _, p := range e.roster.Players() {
		if _, ok := e.scores[scoredomain.Key(date, p.ID)]; !ok {
			c.Missing = append(c.Missing, p.ID)
		}
	}
	c.Complete = c.Recorded == c.Expected
	return c
}

// SeriesCompletion is complete when the record count equals roster size
// times the number of days.
func (e *Engine) SeriesCompletion() SeriesCompletion {
	s := SeriesCompletion{Expected: e.roster.Size() * e.calendar.Len()}
	for _, d := range e.calendar.Days() {
		c := e.dayCompletion(d.Date)
		s.Days = append(s.Days, c)
		s.Recorded += c.Recorded
	}
	s.Complete = s.Recorded == s.Expected
	return s
}

// DeriveWinners walks the days in calendar order, then the series.
func (e *Engine) DeriveWinners() []Winner {
	winners, _ := e.derive()
	return winners
}

// derive returns the winners alongside the status of every configured
// competition.
func (e *Engine) derive() ([]Winner, []CompetitionStatus) {
	winners := []Winner{}
	status := make([]CompetitionStatus, 0, e.calendar.CompetitionCount(e.rules))

	for _, day := range e.calendar.Days() {
		complete := e.dayCompletion(day.Date).Complete

		for _, kind := range competition.DailyKinds {
			st := CompetitionStatus{
				Date:            day.Date,
				Course:          day.Course,
				Competition:     kind.Label(),
				CompetitionType: kind,
			}

			var (
				winnerID string
				won      bool
			)
			if seg, ok := kind.Segment(); ok {
				winnerID, st.Reason, won = e.scoreWinner(day.Date, seg, complete)
			} else if shot, ok := e.shots[shotdomain.Key(day.Date, kind)]; ok {
				winnerID, won = shot.PlayerID, true
			} else {
				st.Reason = ReasonNotDeclared
			}

			if won {
				w := e.winner(day.Date, day.Course, kind, winnerID)
				winners = append(winners, w)
				st.Determined, st.Reason = true, ""
				st.WinnerID, st.WinnerName = w.WinnerID, w.WinnerName
			}
			status = append(status, st)
		}
	}

	if e.rules.OverallEnabled {
		st := CompetitionStatus{
			Date:            competition.OverallDate,
			Course:          e.calendar.OverallCourse(),
			Competition:     competition.KindOverall.Label(),
			CompetitionType: competition.KindOverall,
		}
		switch leader, ok := e.OverallLeaderboard().Leader(); {
		case !e.SeriesCompletion().Complete:
			st.Reason = ReasonSeriesIncomplete
		case !ok || leader.Points <= 0:
			st.Reason = ReasonNoPositiveScore
		default:
			w := e.winner(competition.OverallDate, st.Course, competition.KindOverall, leader.PlayerID)
			winners = append(winners, w)
			st.Determined = true
			st.WinnerID, st.WinnerName = w.WinnerID, w.WinnerName
		}
		status = append(status, st)
	}
	return winners, status
}

// scoreWinner applies completion gating: a winner only on a complete day
// with a positive leading score.
func (e *Engine) scoreWinner(date string, seg competition.Segment, complete bool) (string, StatusReason, bool) {
	if !complete {
		return "", ReasonDayIncomplete, false
	}
	lb, err := e.Leaderboard(date, seg)
	if err != nil {
		return "", ReasonDayIncomplete, false
	}
	leader, ok := lb.Leader()
	if !ok || leader.Points <= 0 {
		return "", ReasonNoPositiveScore, false
	}
	return leader.PlayerID, "", true
}

func (e *Engine) winner(date, course string, kind competition.Kind, playerID string) Winner {
	return Winner{
		Date:            date,
		Course:          course,
		Competition:     kind.Label(),
		CompetitionType: kind,
		WinnerID:        playerID,
		WinnerName:      e.roster.Name(playerID),
		Prize:           e.rules.PrizeAmount,
	}
}

// PrizeTotals credits every winner's prize to the player. The result holds
// every roster player in roster order.
func (e *Engine) PrizeTotals(winners []Winner) []PrizeTotal {
	totals := make([]PrizeTotal, 0, e.roster.Size())
	byID := make(map[string]int, e.roster.Size())
	for i, p := range e.roster.Players() {
		totals = append(totals, PrizeTotal{PlayerID: p.ID, Name: p.Name})
		byID[p.ID] = i
	}
	for _, w := range winners {
		if i, ok := byID[w.WinnerID]; ok {
			totals[i].Amount += w.Prize
			totals[i].Wins++
		}
	}
	return totals
}

// Results derives winners, prize totals and the status board.
func (e *Engine) Results() Results {
	winners, status := e.derive()
	totals := e.PrizeTotals(winners)

	summary := make([]PrizeTotal, 0, len(totals))
	awarded := 0
	for _, t := range totals {
		awarded += t.Amount
		if t.Amount > 0 {
			summary = append(summary, t)
		}
	}
	// totals is in roster order, so a stable sort keeps roster order for ties.
	sort.SliceStable(summary, func(i, j int) bool { return summary[i].Amount > summary[j].Amount })

	count := e.calendar.CompetitionCount(e.rules)
	return Results{
		Winners:                winners,
		Totals:                 totals,
		Summary:                summary,
		PrizeAmount:            e.rules.PrizeAmount,
		PrizePool:              count * e.rules.PrizeAmount,
		PrizesAwarded:          awarded,
		Currency:               e.rules.Currency,
		CompetitionsDetermined: len(winners),
		CompetitionsTotal:      count,
		Status:                 status,
		Completion:             e.SeriesCompletion(),
	}
}
