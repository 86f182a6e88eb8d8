package eventbus

import "time"

// Topics. Versioned so payloads can evolve without breaking subscribers.
const (
	RoundScoreSavedV1     = "tripscore.round_score.saved.v1"
	SpecialShotDeclaredV1 = "tripscore.special_shot.declared.v1"
	SpecialShotClearedV1  = "tripscore.special_shot.cleared.v1"
	HandicapUpdatedV1     = "tripscore.roster.handicap_updated.v1"
	LedgerReloadedV1      = "tripscore.ledger.reloaded.v1"
	LedgerResetV1         = "tripscore.ledger.reset.v1"
	StandingsUpdatedV1    = "tripscore.standings.updated.v1"
)

// LedgerTopics are the topics that invalidate the standings.
var LedgerTopics = []string{
	RoundScoreSavedV1,
	SpecialShotDeclaredV1,
	SpecialShotClearedV1,
	HandicapUpdatedV1,
	LedgerReloadedV1,
	LedgerResetV1,
}

type RoundScoreSavedPayload struct {
	PlayerID    string `json:"player_id"`
	Date        string `json:"date"`
	TotalPoints int    `json:"total_points"`
}

type SpecialShotPayload struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	PlayerID string `json:"player_id,omitempty"`
}

type HandicapUpdatedPayload struct {
	PlayerID string  `json:"player_id"`
	Handicap float64 `json:"handicap"`
}

// LedgerReloadedPayload is published when a subscription replaces a ledger
// snapshot with the store's contents.
type LedgerReloadedPayload struct {
	Collection string `json:"collection"`
	Records    int    `json:"records"`
}

type LedgerResetPayload struct {
	Collections []string `json:"collections"`
}

type StandingsUpdatedPayload struct {
	Reason                 string    `json:"reason"`
	CompetitionsDetermined int       `json:"competitions_determined"`
	CompetitionsTotal      int       `json:"competitions_total"`
	NewlyDetermined        []string  `json:"newly_determined,omitempty"`
	ComputedAt             time.Time `json:"computed_at"`
}
