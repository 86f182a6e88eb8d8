package config

import (
	"time"

	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	tripdomain "github.com/Black-And-White-Club/tripscore/app/modules/trip/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// Default describes the September 2025 East Lothian trip: eight players,
// three rounds, 400 SEK per competition.
func Default() *Config {
	overall := true
	return &Config{
		Trip: tripdomain.Itinerary{
			Name: "Scotland Golf Trip 2025",
			Flights: []tripdomain.Flight{
				{
					Direction: tripdomain.DirectionOutbound,
					From:      "Stockholm", FromCode: "ARN",
					To: "Edinburgh", ToCode: "EDI",
					Date: "2025-09-24", DepartureTime: "11:10", ArrivalTime: "12:30",
					Duration: "2h 20min",
				},
				{
					Direction: tripdomain.DirectionReturn,
					From:      "Edinburgh", FromCode: "EDI",
					To: "Stockholm", ToCode: "ARN",
					Date: "2025-09-28", DepartureTime: "11:45", ArrivalTime: "14:55",
					Duration: "2h 10min",
				},
			},
			Hotel: tripdomain.Hotel{
				Name:    "Golf Lodge B&B",
				Address: "53 Dirleton Avenue, North Berwick, East Lothian, EH39 4BL",
				Phone:   "+44 1620 892 457",
			},
		},
		Roster: []rosterdomain.Player{
			{ID: "1", Name: "Peter Dahl"},
			{ID: "2", Name: "Johan Dahl"},
			{ID: "3", Name: "Johan Dahlgren"},
			{ID: "4", Name: "Michael Dovland"},
			{ID: "5", Name: "Fredrik Andersson"},
			{ID: "6", Name: "Fredrik Käck"},
			{ID: "7", Name: "Toni Bukaki"},
			{ID: "8", Name: "Magnus Agren"},
		},
		Competition: CompetitionConfig{
			Timezone: "Europe/London",
			Days: []competition.Day{
				{Date: "2025-09-25", Name: "Kilspindie", Course: "Kilspindie Golf Club", StartTime: "10:30", EndTime: "16:30"},
				{Date: "2025-09-26", Name: "Dunbar", Course: "Dunbar Golf Club", StartTime: "11:30", EndTime: "17:30"},
				{Date: "2025-09-27", Name: "Gullane", Course: "Gullane Golf Club No2", StartTime: "12:24", EndTime: "18:30"},
			},
			PrizeAmount:    400,
			EntryFee:       50,
			Currency:       "SEK",
			OverallEnabled: &overall,
			RankPolicy:     string(competition.RankSequential),
		},
		Store: StoreConfig{
			Backend:        store.BackendNATS,
			LocalPath:      "tripscore.db",
			ConnectTimeout: 5 * time.Second,
		},
		NATS: NATSConfig{
			URL:    "nats://127.0.0.1:4222",
			Bucket: "tripscore",
		},
		HTTP: HTTPConfig{
			Address:       ":8080",
			RateLimit:     20,
			RateBurst:     40,
			ShutdownGrace: 10 * time.Second,
		},
		JWT: JWTConfig{
			Issuer:     "tripscore",
			Audience:   "tripscore-admin",
			DefaultTTL: 24 * time.Hour,
		},
		Queue: QueueConfig{MaxWorkers: 2},
		Artifacts: ArtifactsConfig{
			Prefix: "results",
			Region: "eu-north-1",
		},
		Observability: ObservabilityConfig{
			Environment: "development",
			LogLevel:    "info",
		},
	}
}
