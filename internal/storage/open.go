package storage

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/go-partners/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backing store named by backend. The returned closer must be
// closed on shutdown; it is a no-op for stores without resources.
func Open(backend string, prefs fyne.Preferences, dbPath string) (KeyValue, io.Closer, error) {
	switch backend {
	case config.BackendPreferences, "":
		return NewPreferences(prefs), nopCloser{}, nil
	case config.BackendKeyring:
		return NewKeyring(config.KeyringService), nopCloser{}, nil
	case config.BackendSQLite:
		db, err := OpenSQLite(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("%s: %q", config.ErrUnknownBackend, backend)
	}
}
