package standingsservice

import (
	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

func (s *StandingsService) snapshot() (*standingsdomain.Engine, standingsdomain.Results) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.results
}

func (s *StandingsService) Results() standingsdomain.Results {
	_, res := s.snapshot()
	return res
}

// Day resolves selector (ISO date, day number, course, or "today") and
// returns the three segment leaderboards with completion and winners.
func (s *StandingsService) Day(selector string) (DayView, error) {
	day, err := s.calendar.Resolve(selector, s.now())
	if err != nil {
		return DayView{}, err
	}
	engine, res := s.snapshot()

	view := DayView{Day: day, Winners: []standingsdomain.Winner{}}
	for _, seg := range competition.Segments {
		lb, err := engine.Leaderboard(day.Date, seg)
		if err != nil {
			return DayView{}, err
		}
		view.Leaderboards = append(view.Leaderboards, lb)
	}
	if view.Completion, err = engine.Completion(day.Date); err != nil {
		return DayView{}, err
	}
	for _, w := range res.Winners {
		if w.Date == day.Date {
			view.Winners = append(view.Winners, w)
		}
	}
	return view, nil
}

func (s *StandingsService) DayLeaderboard(selector, segment string) (standingsdomain.Leaderboard, error) {
	seg, err := competition.ParseSegment(segment)
	if err != nil {
		return standingsdomain.Leaderboard{}, err
	}
	day, err := s.calendar.Resolve(selector, s.now())
	if err != nil {
		return standingsdomain.Leaderboard{}, err
	}
	engine, _ := s.snapshot()
	return engine.Leaderboard(day.Date, seg)
}

func (s *StandingsService) Overall() standingsdomain.Leaderboard {
	engine, _ := s.snapshot()
	return engine.OverallLeaderboard()
}

func (s *StandingsService) Completion() standingsdomain.SeriesCompletion {
	_, res := s.snapshot()
	return res.Completion
}
