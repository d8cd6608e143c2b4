// Package partner holds the partner records of a session: the data model, its
// validation rules, the persisted encoding and the Store that owns the
// collection.
package partner

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/go-partners/internal/config"
)

// NameField selects which name variant is shown as a partner's display name.
type NameField string

const (
	FirstName    NameField = "firstName"
	LastName     NameField = "lastName"
	NickName     NameField = "nickName"
	IntimateName NameField = "intimateName"
)

// NameFields lists the selectable name variants in form order.
var NameFields = []NameField{FirstName, LastName, NickName, IntimateName}

var (
	ErrInvalidPreferredName = errors.New(config.ErrInvalidPreferred)
	ErrInvalidAnniversary   = errors.New(config.ErrInvalidAnniv)
)

// Valid reports whether f is one of the known name variants.
func (f NameField) Valid() bool {
	switch f {
	case FirstName, LastName, NickName, IntimateName:
		return true
	}
	return false
}

// ParseNameField converts a stored or user-supplied value to a NameField.
func ParseNameField(s string) (NameField, error) {
	f := NameField(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreferredName, s)
	}
	return f, nil
}

// Anniversary is a named event that recurs every year on the month and day of
// Date. The year of Date carries no meaning beyond the calendar date itself.
type Anniversary struct {
	Name string
	Date time.Time
}

// Preference is a liked or disliked topic.
type Preference struct {
	Name   string `json:"name"`
	IsLike bool   `json:"isLike"`
}

// Partner is one person tracked by the app.
type Partner struct {
	ID            string        `json:"id"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	NickName      string        `json:"nickName"`
	IntimateName  string        `json:"intimateName"`
	PreferredName NameField     `json:"preferredName"`
	Anniversaries []Anniversary `json:"anniversaries"`
	Preferences   []Preference  `json:"preferences"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Notes         string        `json:"notes"`
}

// DisplayName returns the name variant selected by PreferredName. An empty
// variant or an unknown selection yields "".
func (p Partner) DisplayName() string {
	switch p.PreferredName {
	case FirstName:
		return p.FirstName
	case LastName:
		return p.LastName
	case NickName:
		return p.NickName
	case IntimateName:
		return p.IntimateName
	}
	return ""
}

// Clone returns a copy that shares no slices with p.
func (p Partner) Clone() Partner {
	p.Anniversaries = cloneAnniversaries(p.Anniversaries)
	p.Preferences = clonePreferences(p.Preferences)
	return p
}

// Validate checks the field invariants of a record about to be stored.
func (p Partner) Validate() error {
	if !p.PreferredName.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPreferredName, p.PreferredName)
	}
	for i, a := range p.Anniversaries {
		if a.Date.IsZero() {
			return fmt.Errorf("%w: #%d %q", ErrInvalidAnniversary, i, a.Name)
		}
	}
	return nil
}

// CivilDate strips the time of day and location from t, keeping its
// year, month and day at midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneAnniversaries(in []Anniversary) []Anniversary {
	out := make([]Anniversary, 0, len(in))
	for _, a := range in {
		out = append(out, Anniversary{Name: a.Name, Date: CivilDate(a.Date)})
	}
	return out
}

func clonePreferences(in []Preference) []Preference {
	out := make([]Preference, 0, len(in))
	return append(out, in...)
}
