package standingsdomain

import (
	"fmt"
	"testing"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	d1 = "2025-09-25"
	d2 = "2025-09-26"
)

func testRules() competition.Rules {
	r := competition.DefaultRules()
	r.PrizeAmount = 400
	return r
}

func mustRoster(t *testing.T, ids ...string) *rosterdomain.Roster {
	t.Helper()
	players := make([]rosterdomain.Player, len(ids))
	for i, id := range ids {
		players[i] = rosterdomain.Player{ID: id, Name: "Player " + id}
	}
	r, err := rosterdomain.NewRoster(players)
	require.NoError(t, err)
	return r
}

func mustCalendar(t *testing.T, dates ...string) *competition.Calendar {
	t.Helper()
	days := make([]competition.Day, len(dates))
	for i, d := range dates {
		days[i] = competition.Day{Date: d, Name: fmt.Sprintf("Day %d", i+1), Course: fmt.Sprintf("Course %d", i+1)}
	}
	c, err := competition.NewCalendar(days, nil)
	require.NoError(t, err)
	return c
}

func score(player, date string, front, back int) scoredomain.RoundScore {
	return scoredomain.RoundScore{PlayerID: player, Date: date, FrontNinePoints: front, BackNinePoints: back}
}

func kinds(ws []Winner) []string {
	out := []string{}
	for _, w := range ws {
		out = append(out, w.Date+"."+string(w.CompetitionType)+"="+w.WinnerID)
	}
	return out
}

// A posts 20+15, B has not posted: B appears with zero and no score winner
// exists. Once B posts 30, A wins the full round.
func TestTwoPlayerExample(t *testing.T) {
	roster := mustRoster(t, "A", "B")
	cal := mustCalendar(t, d1)

	e := NewEngine(roster, cal, testRules(), []scoredomain.RoundScore{score("A", d1, 20, 15)}, nil)

	lb, err := e.Leaderboard(d1, competition.SegmentFullRound)
	require.NoError(t, err)
	want := []Entry{
		{Rank: 1, PlayerID: "A", Name: "Player A", Points: 35, Recorded: true},
		{Rank: 2, PlayerID: "B", Name: "Player B", Points: 0},
	}
	if diff := cmp.Diff(want, lb.Entries); diff != "" {
		t.Errorf("Leaderboard() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, e.DeriveWinners())

	e = NewEngine(roster, cal, testRules(), []scoredomain.RoundScore{
		score("A", d1, 20, 15),
		score("B", d1, 16, 14),
	}, nil)

	winners := e.DeriveWinners()
	assert.Contains(t, kinds(winners), d1+".fullRound=A")
	totals := e.PrizeTotals(winners)
	assert.Equal(t, PrizeTotal{PlayerID: "A", Name: "Player A", Amount: 400 * len(winners), Wins: len(winners)}, totals[0])
}

func TestLeaderboardAlwaysHoldsRoster(t *testing.T) {
	faker := gofakeit.New(42)
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	roster := mustRoster(t, ids...)
	cal := mustCalendar(t, d1, d2)

	for i := 0; i < 50; i++ {
		var scores []scoredomain.RoundScore
		for _, d := range []string{d1, d2} {
			for _, id := range ids {
				if faker.Bool() {
					scores = append(scores, score(id, d, faker.IntRange(0, 25), faker.IntRange(0, 25)))
				}
			}
		}
		e := NewEngine(roster, cal, testRules(), scores, nil)
		for _, seg := range competition.Segments {
			lb, err := e.Leaderboard(d1, seg)
			require.NoError(t, err)
			require.Len(t, lb.Entries, roster.Size())
			for j := 1; j < len(lb.Entries); j++ {
				assert.GreaterOrEqual(t, lb.Entries[j-1].Points, lb.Entries[j].Points)
			}
		}
		assert.Len(t, e.OverallLeaderboard().Entries, roster.Size())

		first, second := e.Results(), e.Results()
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("Results() not idempotent (-first +second):\n%s", diff)
		}

		_, hasOverall := find(first.Winners, competition.KindOverall)
		assert.Equal(t, len(scores) == roster.Size()*cal.Len() && e.OverallLeaderboard().Entries[0].Points > 0, hasOverall)
	}
}

func find(ws []Winner, k competition.Kind) (Winner, bool) {
	for _, w := range ws {
		if w.CompetitionType == k {
			return w, true
		}
	}
	return Winner{}, false
}

func TestTieBreakUsesRosterOrder(t *testing.T) {
	roster := mustRoster(t, "x", "y", "z")
	cal := mustCalendar(t, d1)
	scores := []scoredomain.RoundScore{
		score("z", d1, 10, 10),
		score("y", d1, 10, 10),
		score("x", d1, 5, 5),
	}

	tests := []struct {
		name      string
		policy    competition.RankPolicy
		wantRanks []int
	}{
		{name: "sequential", policy: competition.RankSequential, wantRanks: []int{1, 2, 3}},
		{name: "shared", policy: competition.RankShared, wantRanks: []int{1, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := testRules()
			rules.RankPolicy = tt.policy
			e := NewEngine(roster, cal, rules, scores, nil)

			lb, err := e.Leaderboard(d1, competition.SegmentFullRound)
			require.NoError(t, err)
			var ids []string
			var ranks []int
			for _, en := range lb.Entries {
				ids = append(ids, en.PlayerID)
				ranks = append(ranks, en.Rank)
			}
			assert.Equal(t, []string{"y", "z", "x"}, ids)
			assert.Equal(t, tt.wantRanks, ranks)

			w, ok := find(e.DeriveWinners(), competition.KindFullRound)
			require.True(t, ok)
			assert.Equal(t, "y", w.WinnerID, "winner unaffected by rank policy")
		})
	}
}

func TestDeriveWinners(t *testing.T) {
	roster := mustRoster(t, "A", "B")
	cal := mustCalendar(t, d1, d2)

	tests := []struct {
		name   string
		rules  func(*competition.Rules)
		scores []scoredomain.RoundScore
		shots  []shotdomain.SpecialShot
		want   []string
	}{
		{
			name: "empty ledgers",
			want: []string{},
		},
		{
			name:   "incomplete day has no score winners",
			scores: []scoredomain.RoundScore{score("A", d1, 30, 30)},
			want:   []string{},
		},
		{
			name:   "zero leader suppressed",
			scores: []scoredomain.RoundScore{score("A", d1, 0, 0), score("B", d1, 0, 0)},
			want:   []string{},
		},
		{
			name:   "segments judged separately",
			scores: []scoredomain.RoundScore{score("A", d1, 20, 0), score("B", d1, 10, 5)},
			want:   []string{d1 + ".front9=A", d1 + ".back9=B", d1 + ".fullRound=A"},
		},
		{
			name:   "zero back nine only",
			scores: []scoredomain.RoundScore{score("A", d1, 20, 0), score("B", d1, 10, 0)},
			want:   []string{d1 + ".front9=A", d1 + ".fullRound=A"},
		},
		{
			name: "special shots ignore completion",
			shots: []shotdomain.SpecialShot{
				{PlayerID: "B", Date: d2, Type: competition.KindLongestDrive},
				{PlayerID: "A", Date: d1, Type: competition.KindClosestToPin},
			},
			want: []string{d1 + ".closestToPin=A", d2 + ".longestDrive=B"},
		},
		{
			name: "complete series has overall",
			scores: []scoredomain.RoundScore{
				score("A", d1, 10, 10), score("B", d1, 12, 12),
				score("A", d2, 20, 20), score("B", d2, 1, 1),
			},
			want: []string{
				d1 + ".front9=B", d1 + ".back9=B", d1 + ".fullRound=B",
				d2 + ".front9=A", d2 + ".back9=A", d2 + ".fullRound=A",
				"Overall.overall=A",
			},
		},
		{
			name:  "overall disabled",
			rules: func(r *competition.Rules) { r.OverallEnabled = false },
			scores: []scoredomain.RoundScore{
				score("A", d1, 1, 0), score("B", d1, 0, 0),
				score("A", d2, 0, 0), score("B", d2, 0, 0),
			},
			want: []string{d1 + ".front9=A", d1 + ".fullRound=A"},
		},
		{
			name: "records outside roster ignored",
			scores: []scoredomain.RoundScore{
				score("A", d1, 10, 10), score("ghost", d1, 50, 50),
			},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := testRules()
			if tt.rules != nil {
				tt.rules(&rules)
			}
			e := NewEngine(roster, cal, rules, tt.scores, tt.shots)
			assert.Equal(t, tt.want, kinds(e.DeriveWinners()))
		})
	}
}

func TestOverallWinnerCarriesSeriesLabels(t *testing.T) {
	roster := mustRoster(t, "A")
	cal := mustCalendar(t, d1, d2)
	e := NewEngine(roster, cal, testRules(), []scoredomain.RoundScore{score("A", d1, 1, 1), score("A", d2, 1, 1)}, nil)

	w, ok := find(e.DeriveWinners(), competition.KindOverall)
	require.True(t, ok)
	assert.Equal(t, Winner{
		Date:            "Overall",
		Course:          "2-Day Total",
		Competition:     "Overall Champion",
		CompetitionType: competition.KindOverall,
		WinnerID:        "A",
		WinnerName:      "Player A",
		Prize:           400,
	}, w)
}

func TestRedeclareMovesPrize(t *testing.T) {
	roster := mustRoster(t, "A", "B")
	cal := mustCalendar(t, d1)
	shots := []shotdomain.SpecialShot{{PlayerID: "A", Date: d1, Type: competition.KindClosestToPin}}

	r := NewEngine(roster, cal, testRules(), nil, shots).Results()
	assert.Equal(t, 400, r.Totals[0].Amount)

	shots[0].PlayerID = "B"
	r = NewEngine(roster, cal, testRules(), nil, shots).Results()
	assert.Equal(t, 0, r.Totals[0].Amount)
	assert.Equal(t, 400, r.Totals[1].Amount)
	assert.Equal(t, 400, r.PrizesAwarded)
}

func TestCompletion(t *testing.T) {
	roster := mustRoster(t, "A", "B")
	cal := mustCalendar(t, d1, d2)
	e := NewEngine(roster, cal, testRules(), []scoredomain.RoundScore{
		score("B", d1, 1, 1),
		score("A", d2, 1, 1), score("B", d2, 1, 1),
	}, nil)

	c, err := e.Completion(d1)
	require.NoError(t, err)
	assert.Equal(t, DayCompletion{Date: d1, Recorded: 1, Expected: 2, Missing: []string{"A"}}, c)

	c, err = e.Completion(d2)
	require.NoError(t, err)
	assert.True(t, c.Complete)

	s := e.SeriesCompletion()
	assert.Equal(t, 3, s.Recorded)
	assert.Equal(t, 4, s.Expected)
	assert.False(t, s.Complete)

	_, err = e.Completion("2025-10-01")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = e.Leaderboard(d1, "eagle")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestResults(t *testing.T) {
	roster := mustRoster(t, "A", "B", "C")
	cal := mustCalendar(t, d1)
	e := NewEngine(roster, cal, testRules(), []scoredomain.RoundScore{
		score("A", d1, 10, 20), score("B", d1, 15, 5), score("C", d1, 3, 3),
	}, []shotdomain.SpecialShot{
		{PlayerID: "C", Date: d1, Type: competition.KindLongestDrive},
	})

	r := e.Results()
	// Day: front9 B, back9 A, fullRound A, longestDrive C; overall A.
	assert.Equal(t, 5, r.CompetitionsDetermined)
	assert.Equal(t, 6, r.CompetitionsTotal)
	assert.Equal(t, 6*400, r.PrizePool)
	assert.Equal(t, 5*400, r.PrizesAwarded)
	assert.Equal(t, "SEK", r.Currency)

	assert.Equal(t, []PrizeTotal{
		{PlayerID: "A", Name: "Player A", Amount: 1200, Wins: 3},
		{PlayerID: "B", Name: "Player B", Amount: 400, Wins: 1},
		{PlayerID: "C", Name: "Player C", Amount: 400, Wins: 1},
	}, r.Summary)

	require.Len(t, r.Status, 6)
	ctp := r.Status[3]
	assert.Equal(t, competition.KindClosestToPin, ctp.CompetitionType)
	assert.False(t, ctp.Determined)
	assert.Equal(t, ReasonNotDeclared, ctp.Reason)
}

func TestStatusReasons(t *testing.T) {
	roster := mustRoster(t, "A", "B")
	cal := mustCalendar(t, d1, d2)
	e := NewEngine(roster, cal, testRules(), []scoredomain.RoundScore{
		score("A", d1, 0, 0), score("B", d1, 0, 0),
	}, nil)

	byKey := map[string]CompetitionStatus{}
	for _, s := range e.Results().Status {
		byKey[s.Key()] = s
	}
	assert.Equal(t, ReasonNoPositiveScore, byKey[d1+".front9"].Reason)
	assert.Equal(t, ReasonDayIncomplete, byKey[d2+".fullRound"].Reason)
	assert.Equal(t, ReasonSeriesIncomplete, byKey["Overall.overall"].Reason)
}
