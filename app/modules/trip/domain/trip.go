// Package tripdomain describes the read-only trip itinerary.
package tripdomain

import (
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionReturn   Direction = "return"
)

type Flight struct {
	Direction     Direction `json:"direction" yaml:"direction"`
	From          string    `json:"from" yaml:"from"`
	FromCode      string    `json:"from_code" yaml:"from_code"`
	To            string    `json:"to" yaml:"to"`
	ToCode        string    `json:"to_code" yaml:"to_code"`
	Date          string    `json:"date" yaml:"date"`
	DepartureTime string    `json:"departure_time" yaml:"departure_time"`
	ArrivalTime   string    `json:"arrival_time" yaml:"arrival_time"`
	Duration      string    `json:"duration,omitempty" yaml:"duration"`
}

type Hotel struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	Phone   string `json:"phone" yaml:"phone"`
}

// Itinerary is the configured logistics. Courses come from the calendar.
type Itinerary struct {
	Name        string   `json:"name" yaml:"name"`
	Flights     []Flight `json:"flights" yaml:"flights"`
	Hotel       Hotel    `json:"hotel" yaml:"hotel"`
	DriverPhone string   `json:"driver_phone" yaml:"driver_phone"`
}

// Info is the full trip view served to clients.
type Info struct {
	Itinerary
	Courses []competition.Day `json:"courses"`
}

// Validate checks flight directions and dates.
func (it Itinerary) Validate() error {
	for i, f := range it.Flights {
		if f.Direction != DirectionOutbound && f.Direction != DirectionReturn {
			return fmt.Errorf("flight %d: direction %q must be outbound or return", i+1, f.Direction)
		}
		if _, err := time.Parse(competition.DateLayout, f.Date); err != nil {
			return fmt.Errorf("flight %d: date %q is not YYYY-MM-DD", i+1, f.Date)
		}
	}
	return nil
}

// NewInfo combines the itinerary with the competition days.
func NewInfo(it Itinerary, cal *competition.Calendar) Info {
	flights := make([]Flight, len(it.Flights))
	copy(flights, it.Flights)
	it.Flights = flights
	return Info{Itinerary: it, Courses: cal.Days()}
}
