package competition

import (
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Clock abstracts time.Now for date selectors.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// Resolve maps a day selector onto a competition day. Accepted forms, in
// order: ISO date, 1-based day number ("2" or "day2"), day name or course
// name, then natural language parsed relative to now ("today", "tomorrow",
// "saturday").
func (c *Calendar) Resolve(selector string, now time.Time) (Day, error) {
	s := strings.TrimSpace(selector)
	if s == "" {
		return Day{}, shared.NewValidationError("date", selector, "empty day selector")
	}

	if d, ok := c.Day(s); ok {
		return d, nil
	}

	lower := strings.ToLower(s)
	if n, err := strconv.Atoi(strings.TrimPrefix(lower, "day")); err == nil {
		if n >= 1 && n <= len(c.days) {
			return c.days[n-1], nil
		}
		return Day{}, shared.NewValidationError("date", selector, "day number out of range")
	}

	for _, d := range c.days {
		if strings.EqualFold(d.Name, s) || strings.EqualFold(d.Course, s) {
			return d, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(s, now.In(c.loc))
	if err == nil && r != nil {
		date := r.Time.In(c.loc).Format(DateLayout)
		if d, ok := c.Day(date); ok {
			return d, nil
		}
		return Day{}, shared.NewValidationError("date", selector, "resolves to "+date+", which is not a competition day")
	}

	return Day{}, shared.NewValidationError("date", selector, "not a competition day")
}
