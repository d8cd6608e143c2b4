package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-partners/internal/catalog"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/engine"
	"github.com/tartampluch/go-partners/internal/partner"
	"github.com/tartampluch/go-partners/internal/server"
	"github.com/tartampluch/go-partners/internal/session"
	"github.com/zalando/go-keyring"
)

// PartnersApp encapsulates the windows, preferences and services of the app.
type PartnersApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Session  *session.Session
	Server   *server.FeedServer
	Importer *engine.Importer
	Clock    engine.Clock // Injected clock for testability

	SupportedLanguages []string

	agendaMu sync.RWMutex
	agenda   []engine.AgendaEntry

	list    *widget.List
	actions *partnerActions

	formWindow     fyne.Window
	ideasWindow    fyne.Window
	settingsWindow fyne.Window
}

// NewPartnersApp constructs the application and wires dependencies.
func NewPartnersApp(a fyne.App, ctx context.Context, sess *session.Session, srv *server.FeedServer) *PartnersApp {
	a.SetIcon(theme.AccountIcon())

	app := &PartnersApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Session:            sess,
		Server:             srv,
		Importer:           engine.NewImporter(),
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
	}
	sess.OnSelectionChange(func() {
		app.updateActions()
		app.refreshIdeas()
	})
	return app
}

// Run starts the feed server and shows the partners window until the app quits.
func (app *PartnersApp) Run() {
	app.SetupI18n()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	app.ShowPartnersWindow()
	app.App.Run()
}

// planner returns a planner bound to the app clock.
func (app *PartnersApp) planner() *engine.Planner {
	return &engine.Planner{Clock: app.Clock}
}

// refreshPartners recomputes the agenda, redraws the list and republishes
// the feeds. It runs after every mutation.
func (app *PartnersApp) refreshPartners() {
	agenda := app.planner().Agenda(app.Session.Partners.List())

	app.agendaMu.Lock()
	app.agenda = agenda
	app.agendaMu.Unlock()

	if app.list != nil {
		app.list.Refresh()
		app.syncListSelection()
	}
	app.updateActions()
	app.refreshIdeas()
	if err := app.publishFeeds(); err != nil {
		app.App.SendNotification(fyne.NewNotification(config.TitleFeedError, app.GetMsg(config.TKeyNotifFeedFail)))
	}
}

// agendaAt returns the row at index i of the current agenda.
func (app *PartnersApp) agendaAt(i int) (engine.AgendaEntry, bool) {
	app.agendaMu.RLock()
	defer app.agendaMu.RUnlock()
	if i < 0 || i >= len(app.agenda) {
		return engine.AgendaEntry{}, false
	}
	return app.agenda[i], true
}

// agendaIndex returns the row showing partner id, or -1.
func (app *PartnersApp) agendaIndex(id string) int {
	app.agendaMu.RLock()
	defer app.agendaMu.RUnlock()
	for i, e := range app.agenda {
		if e.Partner.ID == id {
			return i
		}
	}
	return -1
}

// publishFeeds renders the calendar and address book from the current
// partners and hands them to the feed server.
func (app *PartnersApp) publishFeeds() error {
	log := slog.With(config.LogKeyComponent, config.CompUI)
	if app.Server == nil {
		return nil
	}
	partners := app.Session.Partners.List()

	gen := &engine.FeedGenerator{
		Clock:         app.Clock,
		FormatSummary: app.buildSummaryFormatter(),
	}
	ics, today, err := gen.Generate(app.Ctx, partners, app.reminderTrigger())
	if err != nil {
		log.Error(config.ErrFeedPublish, config.LogKeyError, err)
		return err
	}

	var vcf bytes.Buffer
	if err := engine.EncodeVCards(&vcf, partners); err != nil {
		log.Error(config.ErrFeedPublish, config.LogKeyError, err)
		return err
	}

	err = errors.Join(
		app.Server.Publish(config.RouteCalendar, ics),
		app.Server.Publish(config.RouteContacts, vcf.Bytes()),
	)
	if err != nil {
		log.Error(config.ErrFeedPublish, config.LogKeyError, err)
		return err
	}

	log.Debug(config.MsgFeedsPublished,
		config.LogKeyCount, len(partners),
		config.LogKeyToday, today)
	return nil
}

// reminderTrigger reads the reminder preferences as an ISO 8601 duration,
// or "" when reminders are off.
func (app *PartnersApp) reminderTrigger() string {
	return engine.ReminderTrigger(
		app.Preferences.Bool(config.PrefReminderEnabled),
		app.Preferences.IntWithFallback(config.PrefReminderValue, config.DefaultReminderValue),
		app.Preferences.StringWithFallback(config.PrefReminderUnit, config.UnitDays),
		app.Preferences.StringWithFallback(config.PrefReminderDir, config.DirBefore),
	)
}

// importConfig assembles the import source from preferences and the keyring.
func (app *PartnersApp) importConfig() engine.ImportConfig {
	cfg := engine.ImportConfig{
		Mode:      app.Preferences.StringWithFallback(config.PrefImportMode, config.SourceModeWeb),
		LocalPath: app.Preferences.String(config.PrefImportPath),
		WebURL:    app.Preferences.String(config.PrefImportURL),
		WebUser:   app.Preferences.String(config.PrefImportUser),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return cfg
}

// buildSummaryFormatter returns a closure that localizes the event summary.
func (app *PartnersApp) buildSummaryFormatter() func(anniversary, partnerName string) string {
	return func(anniversary, partnerName string) string {
		msg, ok := app.localize(config.TKeyEvtSummary, map[string]any{
			"Anniversary": anniversary,
			"Name":        partnerName,
		})
		if !ok {
			return fmt.Sprintf(config.FallbackSummary, anniversary, partnerName)
		}
		return msg
	}
}

// savePartner creates the partner when id is empty and updates it otherwise.
// A persistence failure still counts as saved: the list is refreshed and the
// error is returned for the notice.
func (app *PartnersApp) savePartner(id string, d partner.Draft) (partner.Partner, error) {
	var (
		p   partner.Partner
		err error
	)
	if id == "" {
		p, err = app.Session.Partners.Create(app.Ctx, d)
	} else {
		p, err = app.Session.Partners.Update(app.Ctx, id, d)
	}

	var persistErr *partner.PersistenceError
	if err == nil || errors.As(err, &persistErr) {
		app.refreshPartners()
	}
	return p, err
}

// deletePartner removes a partner. An id that is already gone changes
// nothing and is reported as not found.
func (app *PartnersApp) deletePartner(id string) error {
	removed, err := app.Session.Partners.Delete(app.Ctx, id)
	if !removed {
		if err == nil {
			err = &partner.NotFoundError{ID: id}
		}
		return err
	}
	if _, ok := app.Session.Selected(); !ok {
		app.Session.Clear()
	}
	app.refreshPartners()
	return err
}

// noticeFor maps an error to the localized notice shown to the user.
func (app *PartnersApp) noticeFor(err error) string {
	var persistErr *partner.PersistenceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &persistErr):
		return app.GetMsg(config.TKeyNoticeSaveWarn)
	case errors.Is(err, partner.ErrNotFound):
		return app.GetMsg(config.TKeyNoticeNotFound)
	case errors.Is(err, session.ErrNoSelection):
		return app.GetMsg(config.TKeyNoticeNoSel)
	case errors.Is(err, partner.ErrPairingMismatch):
		return app.GetMsg(config.TKeyNoticeMismatch)
	case errors.Is(err, catalog.ErrEmptyActivity):
		return app.GetMsg(config.TKeyNoticeEmptyAct)
	case errors.Is(err, partner.ErrInvalidPreferredName), errors.Is(err, partner.ErrInvalidAnniversary):
		return app.GetMsg(config.TKeyNoticeInvalid)
	}
	return err.Error()
}

// showNotice displays the notice for err over w, or over the partners
// window when w is nil.
func (app *PartnersApp) showNotice(w fyne.Window, err error) {
	msg := app.noticeFor(err)
	if msg == "" {
		return
	}
	slog.Warn(msg, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
	app.showMessage(w, msg)
}

func (app *PartnersApp) showMessage(w fyne.Window, msg string) {
	if w == nil {
		w = app.Window
	}
	if w == nil {
		return
	}
	dialog.ShowInformation(app.GetMsg(config.TKeyTitleNotice), msg, w)
}
