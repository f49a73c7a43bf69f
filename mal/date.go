package mal

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate reads a MyAnimeList date: YYYY, YYYY-MM or YYYY-MM-DD.
// Missing or zero month and day default to 1. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	parts := strings.SplitN(s, "-", 3)
	components := [3]int{0, 1, 1}
	names := [3]string{"year", "month", "day"}

	for i, part := range parts {
		n := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				return time.Time{}, fmt.Errorf("invalid character %q in %s of date %q", c, names[i], s)
			}
			n = n*10 + int(c-'0')
		}
		if i > 0 && n == 0 {
			n = 1
		}
		components[i] = n
	}

	return time.Date(components[0], time.Month(components[1]), components[2], 0, 0, 0, 0, time.UTC), nil
}
