package appearance

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/storage"
)

// Controller holds the light/dark state. An explicit user choice is stored
// under config.KeyTheme and wins over the system setting.
type Controller struct {
	kv storage.KeyValue

	mu   sync.RWMutex
	dark bool
}

// NewController creates a light-mode controller persisting to kv.
func NewController(kv storage.KeyValue) *Controller {
	return &Controller{kv: kv}
}

// Load restores the saved choice, falling back to systemDark when nothing is
// saved or the store cannot be read.
func (c *Controller) Load(ctx context.Context, systemDark bool) bool {
	log := slog.With(config.LogKeyComponent, config.CompAppearance)

	dark := systemDark
	saved, ok, err := storage.Read(ctx, c.kv, config.KeyTheme, config.LoadTimeout)
	switch {
	case err != nil:
		log.WarnContext(ctx, config.MsgLoadFailed, config.LogKeyKey, config.KeyTheme, config.LogKeyError, err)
	case ok:
		dark = saved == config.ThemeDark
	}

	c.mu.Lock()
	c.dark = dark
	c.mu.Unlock()

	log.DebugContext(ctx, config.MsgThemeLoaded, config.LogKeyTheme, themeName(dark))
	return dark
}

// Toggle flips the mode and saves the new choice. The switch takes effect even
// when saving fails; the error is returned for the caller to report.
func (c *Controller) Toggle(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.dark = !c.dark
	dark := c.dark
	c.mu.Unlock()

	slog.InfoContext(ctx, config.MsgThemeToggled,
		config.LogKeyComponent, config.CompAppearance,
		config.LogKeyTheme, themeName(dark))

	ctx, cancel := context.WithTimeout(ctx, config.PersistTimeout)
	defer cancel()
	if err := c.kv.SetItem(ctx, config.KeyTheme, themeName(dark)); err != nil {
		return dark, fmt.Errorf("%s: %w", config.ErrThemePersist, err)
	}
	return dark, nil
}

// IsDark reports the current mode.
func (c *Controller) IsDark() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dark
}

// Palette returns the palette of the current mode.
func (c *Controller) Palette() Palette {
	if c.IsDark() {
		return Dark
	}
	return Light
}

// Theme returns a fyne.Theme that follows the controller. Install it once;
// after a Toggle, re-apply it so widgets refresh.
func (c *Controller) Theme() fyne.Theme {
	return &paletteTheme{ctrl: c}
}

func themeName(dark bool) string {
	if dark {
		return config.ThemeDark
	}
	return config.ThemeLight
}

// paletteTheme maps the palette onto Fyne's color names and delegates the
// rest to the default theme in the matching variant.
type paletteTheme struct {
	ctrl *Controller
}

func (t *paletteTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	p := t.ctrl.Palette()
	switch name {
	case theme.ColorNameBackground:
		return p.Background
	case theme.ColorNameForeground:
		return p.Text
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return p.TabBarActive
	case theme.ColorNameForegroundOnPrimary:
		return p.ButtonText
	case theme.ColorNameSeparator:
		return p.Border
	case theme.ColorNameInputBorder:
		return p.InputBorder
	case theme.ColorNameInputBackground, theme.ColorNameMenuBackground:
		return p.PickerBackground
	case theme.ColorNameHeaderBackground:
		return p.TabBarBackground
	case theme.ColorNameOverlayBackground:
		return p.ModalBackground
	case theme.ColorNamePlaceHolder:
		return p.Label
	}
	return theme.DefaultTheme().Color(name, t.variant())
}

func (t *paletteTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *paletteTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *paletteTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

func (t *paletteTheme) variant() fyne.ThemeVariant {
	if t.ctrl.IsDark() {
		return theme.VariantDark
	}
	return theme.VariantLight
}
