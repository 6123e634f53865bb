package features

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only accepted transaction date format.
const DateLayout = "2006-01-02"

var ErrUnparseableDate = errors.New("unparseable_date")

// DateParts holds the calendar features derived from a transaction date.
// DayOfWeek uses Monday=0..Sunday=6; IsWeekend is 1 on Saturday and Sunday.
type DateParts struct {
	Year      int
	Month     int
	Day       int
	DayOfWeek int
	IsWeekend int
}

// ExtractDateParts parses a date string and derives its calendar features.
// A date that does not match DateLayout is an error for the caller to
// handle; there is no silent defaulting.
func ExtractDateParts(value string) (DateParts, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return DateParts{}, fmt.Errorf("%w: %q: %v", ErrUnparseableDate, value, err)
	}

	// time.Weekday has Sunday=0; shift so Monday=0 and Sunday=6.
	dow := (int(t.Weekday()) + 6) % 7
	weekend := 0
	if dow >= 5 {
		weekend = 1
	}

	return DateParts{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		DayOfWeek: dow,
		IsWeekend: weekend,
	}, nil
}
