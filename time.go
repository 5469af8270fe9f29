package crowdfund

import (
	"encoding/json"
	"time"

	"github.com/iov-one/crowdfund/errors"
)

// UnixTime is a moment in whole seconds since the epoch. Block times and
// campaign deadlines never need more precision.
type UnixTime int64

// AsUnixTime truncates t to seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add moves t by d, dropping the sub second part of d.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// Validate rejects moments before the epoch.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String formats t in UTC.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}

// UnmarshalJSON accepts seconds as a number, or an RFC 3339 string as used
// in genesis files.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var secs int64
	if err := json.Unmarshal(raw, &secs); err != nil {
		var std time.Time
		if err := json.Unmarshal(raw, &std); err != nil {
			return errors.Wrap(errors.ErrInput, "invalid time format")
		}
		secs = std.Unix()
	}
	if secs < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = UnixTime(secs)
	return nil
}
