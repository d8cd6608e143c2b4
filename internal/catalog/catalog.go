// Package catalog lists date ideas (activities) and the quick-pick presets
// offered by the partner form.
package catalog

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tartampluch/go-partners/internal/config"
)

// ErrEmptyActivity is returned by Add for a blank name.
var ErrEmptyActivity = errors.New(config.ErrEmptyActivity)

// Activity is one idea in the catalog.
type Activity struct {
	ID       string
	Name     string
	Category string
}

// Predefined is the built-in idea list, in display order.
var Predefined = []Activity{
	{ID: "h1", Name: "Hiking", Category: "hobbies"},
	{ID: "h2", Name: "Board Games", Category: "hobbies"},
	{ID: "s1", Name: "Massage", Category: "sex"},
	{ID: "s2", Name: "Role Play", Category: "sex"},
	{ID: "d1", Name: "Meditation", Category: "de-stress"},
	{ID: "d2", Name: "Bubble Bath", Category: "de-stress"},
	{ID: "r1", Name: "Candlelit Dinner", Category: "romantic"},
	{ID: "r2", Name: "Stargazing", Category: "romantic"},
	{ID: "p1", Name: "Tickle Fight", Category: "playful"},
	{ID: "p2", Name: "Pillow Fort", Category: "playful"},
}

// CommonPreferences are the like/dislike topics suggested in the partner form.
var CommonPreferences = []string{
	"Coffee", "Chocolate", "Flowers", "Movies", "Spicy Food", "Books", "Wine", "Loud Music",
}

// AnniversaryPresets are the anniversary names suggested in the partner form.
var AnniversaryPresets = []string{
	"First Met", "First Dine Out", "First Sex", "Married",
}

// Catalog is the predefined activity list plus custom activities added during
// the session. Custom activities are never persisted.
type Catalog struct {
	// NewID generates custom activity ids. Defaults to a random UUID.
	NewID func() string

	mu     sync.RWMutex
	custom []Activity
}

// New returns a catalog with no custom activities.
func New() *Catalog {
	return &Catalog{NewID: uuid.NewString}
}

// Add appends a custom activity. The name is trimmed; a blank name fails with
// ErrEmptyActivity.
func (c *Catalog) Add(name string) (Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Activity{}, ErrEmptyActivity
	}

	a := Activity{
		ID:       config.CustomIDPrefix + c.NewID(),
		Name:     name,
		Category: config.CustomCategory,
	}

	c.mu.Lock()
	c.custom = append(c.custom, a)
	c.mu.Unlock()

	slog.Debug(config.MsgActivityAdded,
		config.LogKeyComponent, config.CompCatalog,
		config.LogKeyName, name)
	return a, nil
}

// All returns the predefined activities followed by the custom ones.
func (c *Catalog) All() []Activity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Activity, 0, len(Predefined)+len(c.custom))
	out = append(out, Predefined...)
	return append(out, c.custom...)
}

// Categories lists the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range c.All() {
		if !seen[a.Category] {
			seen[a.Category] = true
			out = append(out, a.Category)
		}
	}
	return out
}

// ByCategory returns the activities of one category in catalog order.
func (c *Catalog) ByCategory(category string) []Activity {
	var out []Activity
	for _, a := range c.All() {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}
