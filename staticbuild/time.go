package staticbuild

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseGTFSTime converts a GTFS "HH:MM:SS" string into minutes past
// local midnight. Hours may exceed 23 for post-midnight service times
// (e.g. "25:30:00"); the result is not wrapped back into a day.
func ParseGTFSTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.Errorf("found %d parts in time '%s'", len(parts), s)
	}

	hms := [3]int{}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, errors.Wrapf(err, "non-integer in time '%s' pos %d", s, i)
		}
		hms[i] = v
	}

	if hms[0] < 0 {
		return 0, errors.Errorf("negative hour in time '%s'", s)
	}
	if hms[1] < 0 || hms[1] > 59 {
		return 0, errors.Errorf("invalid minute in time '%s'", s)
	}
	if hms[2] < 0 || hms[2] > 59 {
		return 0, errors.Errorf("invalid second in time '%s'", s)
	}

	return hms[0]*60 + hms[1], nil
}
