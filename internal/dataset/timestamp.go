package dataset

import (
	"fmt"
	"time"
)

// Layouts tried in order. Day-first comes before ISO so that "03/04/24"
// reads as 3 April.
var timestampLayouts = []string{
	"02/01/06 15:04",
	"2/1/06 15:04",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Location used for timestamps without a zone.
var Location = time.Local

func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
