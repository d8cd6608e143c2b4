// Package session ties together the per-session state the screens share: the
// partner store, the selected partner, the appearance controller and the
// activity catalog. A Session is created at startup and passed to every
// screen that needs it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/go-partners/internal/appearance"
	"github.com/tartampluch/go-partners/internal/catalog"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
)

// ErrNoSelection is returned by operations that need a selected partner.
var ErrNoSelection = errors.New(config.ErrNoSelection)

// Session is the explicit replacement for app-wide implicit state.
type Session struct {
	Partners   *partner.Store
	Appearance *appearance.Controller
	Catalog    *catalog.Catalog

	mu       sync.RWMutex
	selected string
	onChange []func()
}

// New assembles a session with nothing selected.
func New(store *partner.Store, ctrl *appearance.Controller, cat *catalog.Catalog) *Session {
	return &Session{Partners: store, Appearance: ctrl, Catalog: cat}
}

// OnSelectionChange registers fn to run after every Select or Clear.
func (s *Session) OnSelectionChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Select makes id the current partner. Unknown ids fail with a
// *partner.NotFoundError and keep the previous selection.
func (s *Session) Select(id string) error {
	if _, err := s.Partners.Get(id); err != nil {
		return err
	}
	s.setSelected(id)
	return nil
}

// Clear drops the selection.
func (s *Session) Clear() {
	s.setSelected("")
}

// Selected returns the current partner. The selection is resolved against the
// store on every call so edits and deletions are always reflected; a partner
// deleted after selection reads as no selection.
func (s *Session) Selected() (partner.Partner, bool) {
	s.mu.RLock()
	id := s.selected
	s.mu.RUnlock()

	if id == "" {
		return partner.Partner{}, false
	}
	p, err := s.Partners.Get(id)
	if err != nil {
		return partner.Partner{}, false
	}
	return p, true
}

// IdeasTabsVisible reports whether the idea screens are offered. They only
// make sense once a partner is selected.
func (s *Session) IdeasTabsVisible() bool {
	_, ok := s.Selected()
	return ok
}

// IdeasOwner returns the display name of the selected partner for the
// partner ideas title, and false when there is no selection.
func (s *Session) IdeasOwner() (string, bool) {
	p, ok := s.Selected()
	if !ok {
		return "", false
	}
	return p.DisplayName(), true
}

// ConfirmPairing checks the identifier received over NFC against the
// selected partner.
func (s *Session) ConfirmPairing(ctx context.Context, remoteID string) error {
	log := slog.With(config.LogKeyComponent, config.CompSession)

	p, ok := s.Selected()
	if !ok {
		return ErrNoSelection
	}
	if err := partner.MatchRemote(p, remoteID); err != nil {
		log.InfoContext(ctx, config.MsgPairingFail, config.LogKeyID, p.ID)
		return fmt.Errorf("%w: %q", err, remoteID)
	}
	log.InfoContext(ctx, config.MsgPairingOK, config.LogKeyID, p.ID)
	return nil
}

func (s *Session) setSelected(id string) {
	s.mu.Lock()
	s.selected = id
	listeners := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
