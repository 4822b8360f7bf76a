package mica

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// timestampLayout parses Mica timestamps; fractional seconds are optional
	// on input.
	timestampLayout = "2006-01-02T15:04:05Z"
	// timestampEncodeLayout keeps full precision and trims trailing zeros.
	timestampEncodeLayout = "2006-01-02T15:04:05.999999999Z"
)

// Timestamp is a UTC instant in Mica's textual datetime format.
type Timestamp time.Time

func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp(t.UTC()), nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(timestampEncodeLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Timestamps records when an entity was created and last updated.
type Timestamps struct {
	Created Timestamp  `json:"created"           validate:"required"`
	Updated *Timestamp `json:"updated,omitempty"`
}

func (ts *Timestamps) UnmarshalJSON(data []byte) error {
	var raw struct {
		Created *string `json:"created"`
		Updated *string `json:"updated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*ts = Timestamps{}
	if raw.Created != nil {
		created, err := ParseTimestamp(*raw.Created)
		if err != nil {
			return &fieldError{Path: "timestamps.created", Err: err}
		}
		ts.Created = created
	}
	if raw.Updated != nil {
		updated, err := ParseTimestamp(*raw.Updated)
		if err != nil {
			return &fieldError{Path: "timestamps.updated", Err: err}
		}
		ts.Updated = &updated
	}
	return nil
}
