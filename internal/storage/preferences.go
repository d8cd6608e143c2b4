package storage

import (
	"context"

	"fyne.io/fyne/v2"
)

// Preferences stores values in the Fyne application preferences, which the
// toolkit saves to the platform's per-app storage.
type Preferences struct {
	Prefs fyne.Preferences
}

// NewPreferences wraps the given Fyne preferences.
func NewPreferences(p fyne.Preferences) *Preferences {
	return &Preferences{Prefs: p}
}

// GetItem treats an empty string as absent, since Fyne cannot tell them apart.
func (p *Preferences) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v := p.Prefs.String(key)
	return v, v != "", nil
}

func (p *Preferences) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Prefs.SetString(key, value)
	return nil
}
