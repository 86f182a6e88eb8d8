package rosterdomain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/Black-And-White-Club/tripscore/app/shared"
)

// MaxHandicap is the highest playing handicap accepted.
const MaxHandicap = 54

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// Player is one roster participant.
type Player struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Handicap float64 `json:"handicap" yaml:"handicap"`
}

// Roster is the fixed, ordered list of participants. Order is the tie-break
// order on every leaderboard.
type Roster struct {
	players []Player
	index   map[string]int
}

// NewRoster validates ids, names and handicaps and keeps the given order.
func NewRoster(players []Player) (*Roster, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("roster needs at least one player")
	}
	r := &Roster{
		players: make([]Player, len(players)),
		index:   make(map[string]int, len(players)),
	}
	for i, p := range players {
		if !idPattern.MatchString(p.ID) {
			return nil, fmt.Errorf("player %d: id %q must match [A-Za-z0-9_-]+", i+1, p.ID)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("player %s: name is required", p.ID)
		}
		if err := ValidateHandicap(p.Handicap); err != nil {
			return nil, fmt.Errorf("player %s: %w", p.ID, err)
		}
		if _, dup := r.index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %s", p.ID)
		}
		r.players[i] = p
		r.index[p.ID] = i
	}
	return r, nil
}

// ValidateHandicap bounds a handicap index to [0, MaxHandicap].
func ValidateHandicap(h float64) error {
	if math.IsNaN(h) || h < 0 || h > MaxHandicap {
		return shared.NewValidationError("handicap", strconv.FormatFloat(h, 'f', -1, 64), fmt.Sprintf("must be between 0 and %d", MaxHandicap))
	}
	return nil
}

// Players returns a copy in roster order.
func (r *Roster) Players() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Size is R, the number of players every day must have a record for.
func (r *Roster) Size() int { return len(r.players) }

// Index returns the roster position of id.
func (r *Roster) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

func (r *Roster) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

func (r *Roster) Player(id string) (Player, bool) {
	i, ok := r.index[id]
	if !ok {
		return Player{}, false
	}
	return r.players[i], true
}

// Validate returns a ValidationError for ids not on the roster.
func (r *Roster) Validate(id string) error {
	if !r.Contains(id) {
		return shared.NewValidationError("player_id", id, "not on the roster")
	}
	return nil
}

// WithHandicap returns a copy of the roster with one handicap changed.
func (r *Roster) WithHandicap(id string, handicap float64) (*Roster, error) {
	if err := r.Validate(id); err != nil {
		return nil, err
	}
	if err := ValidateHandicap(handicap); err != nil {
		return nil, err
	}
	players := r.Players()
	players[r.index[id]].Handicap = handicap
	return &Roster{players: players, index: r.index}, nil
}

// Name returns the display name for id, or id itself when unknown.
func (r *Roster) Name(id string) string {
	if p, ok := r.Player(id); ok {
		return p.Name
	}
	return id
}
