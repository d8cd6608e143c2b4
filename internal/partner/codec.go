package partner

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-partners/internal/config"
)

type anniversaryJSON struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// MarshalJSON writes the date as a locale-independent YYYY-MM-DD string.
func (a Anniversary) MarshalJSON() ([]byte, error) {
	return json.Marshal(anniversaryJSON{
		Name: a.Name,
		Date: a.Date.Format(config.DateFormatISO),
	})
}

// UnmarshalJSON accepts YYYY-MM-DD and full RFC 3339 timestamps; only the
// calendar date is kept.
func (a *Anniversary) UnmarshalJSON(data []byte) error {
	var raw anniversaryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := ParseDate(raw.Date)
	if err != nil {
		return err
	}
	a.Name = raw.Name
	a.Date = d
	return nil
}

// ParseDate reads a persisted or user-entered anniversary date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(config.DateFormatISO, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(config.DateFormatRFC3339, s); err == nil {
		return CivilDate(t), nil
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, s)
}

// Encode serializes the whole collection as a JSON array.
func Encode(partners []Partner) (string, error) {
	if partners == nil {
		partners = []Partner{}
	}
	data, err := json.Marshal(partners)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrEncode, err)
	}
	return string(data), nil
}

// Decode parses a blob produced by Encode. Missing collections become empty
// slices and a missing preferred name defaults to FirstName; anything that
// breaks an invariant yields a *DecodeError.
func Decode(blob string) ([]Partner, error) {
	var partners []Partner
	if err := json.Unmarshal([]byte(blob), &partners); err != nil {
		return nil, &DecodeError{Err: err}
	}

	seen := make(map[string]struct{}, len(partners))
	out := make([]Partner, 0, len(partners))
	for _, p := range partners {
		if p.ID == "" {
			return nil, &DecodeError{Err: errors.New("partner without id")}
		}
		if _, dup := seen[p.ID]; dup {
			return nil, &DecodeError{Err: fmt.Errorf("duplicate partner id %q", p.ID)}
		}
		seen[p.ID] = struct{}{}

		if p.PreferredName == "" {
			p.PreferredName = FirstName
		}
		p = p.Clone()
		if err := p.Validate(); err != nil {
			return nil, &DecodeError{Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}
