package testutils

import (
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

func (g *TestDataGenerator) Seed() int64 { return g.seed }

// GeneratePlayers creates count players with ids "1".."count".
func (g *TestDataGenerator) GeneratePlayers(count int) []rosterdomain.Player {
	players := make([]rosterdomain.Player, count)
	for i := range players {
		players[i] = rosterdomain.Player{
			ID:       strconv.Itoa(i + 1),
			Name:     g.faker.FirstName() + " " + g.faker.LastName(),
			Handicap: float64(g.faker.Number(0, 360)) / 10,
		}
	}
	return players
}

// GenerateRoundScores returns one plausible Stableford result per player for
// date. Nines land between 8 and 22 points.
func (g *TestDataGenerator) GenerateRoundScores(players []rosterdomain.Player, date string) []scoredomain.RoundScore {
	out := make([]scoredomain.RoundScore, 0, len(players))
	for _, p := range players {
		out = append(out, scoredomain.RoundScore{
			PlayerID:        p.ID,
			Date:            date,
			FrontNinePoints: g.faker.Number(8, 22),
			BackNinePoints:  g.faker.Number(8, 22),
		})
	}
	return out
}
