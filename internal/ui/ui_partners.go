package ui

import (
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/engine"
	"github.com/tartampluch/go-partners/internal/partner"
	"github.com/tartampluch/go-partners/internal/session"
)

// partnerActions are the toolbar buttons of the partners window.
type partnerActions struct {
	add, edit, remove, ideas, pair *widget.Button
	importBtn, settings, theme     *widget.Button
}

// ShowPartnersWindow displays the partner list, soonest anniversary first.
// The window is the app's master window.
func (app *PartnersApp) ShowPartnersWindow() {
	if app.Window != nil {
		app.Window.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenPartners, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinPartners))
	app.Window = w
	w.SetMaster()
	w.Resize(fyne.NewSize(config.PartnersWinWidth, config.PartnersWinHeight))
	w.SetContent(app.buildPartnersContent())
	w.SetOnClosed(func() {
		app.Window = nil
		app.list = nil
		app.actions = nil
	})

	app.refreshPartners()
	w.Show()
}

// buildPartnersContent lays out the toolbar and the partner list.
func (app *PartnersApp) buildPartnersContent() fyne.CanvasObject {
	list := widget.NewList(
		func() int {
			app.agendaMu.RLock()
			defer app.agendaMu.RUnlock()
			return len(app.agenda)
		},
		func() fyne.CanvasObject {
			name := widget.NewLabel(config.ListPlaceholder)
			name.TextStyle = fyne.TextStyle{Bold: true}
			return container.NewVBox(name, widget.NewLabel(config.ListPlaceholder))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			entry, ok := app.agendaAt(id)
			if !ok {
				return
			}
			box := o.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(listName(entry.Partner))
			box.Objects[1].(*widget.Label).SetText(app.nextLabel(entry.Next))
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		entry, ok := app.agendaAt(id)
		if !ok {
			return
		}
		if err := app.Session.Select(entry.Partner.ID); err != nil {
			app.showNotice(app.Window, err)
			list.UnselectAll()
		}
	}
	app.list = list

	a := &partnerActions{
		add: widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAdd), theme.ContentAddIcon(), func() {
			app.ShowPartnerForm("")
		}),
		edit: widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnEdit), theme.DocumentCreateIcon(), func() {
			if p, ok := app.Session.Selected(); ok {
				app.ShowPartnerForm(p.ID)
			}
		}),
		remove: widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnDelete), theme.DeleteIcon(), app.confirmDelete),
		ideas:  widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnIdeas), theme.InfoIcon(), app.ShowIdeasWindow),
		pair:   widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnPair), theme.ConfirmIcon(), app.showPairDialog),
		importBtn: widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), theme.DownloadIcon(), func() {
			app.importPartners()
		}),
		settings: widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), app.ShowSettingsWindow),
		theme:    widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), app.toggleTheme),
	}
	a.remove.Importance = widget.DangerImportance
	app.actions = a
	app.updateActions()

	top := container.NewVBox(
		container.NewGridWithColumns(config.LayoutColumnsTriple, a.add, a.edit, a.remove),
		container.NewGridWithColumns(config.LayoutColumnsTriple, a.ideas, a.pair, a.importBtn),
		container.NewGridWithColumns(config.LayoutColumnsDouble, a.settings, a.theme),
	)
	return container.NewBorder(top, nil, nil, nil, list)
}

// updateActions enables the selection-bound buttons and labels the theme toggle.
func (app *PartnersApp) updateActions() {
	a := app.actions
	if a == nil {
		return
	}
	_, selected := app.Session.Selected()
	for _, b := range []*widget.Button{a.edit, a.remove, a.pair} {
		if selected {
			b.Enable()
		} else {
			b.Disable()
		}
	}

	if app.Session.Appearance.IsDark() {
		a.theme.SetText(app.GetMsg(config.TKeyBtnThemeLight))
	} else {
		a.theme.SetText(app.GetMsg(config.TKeyBtnThemeDark))
	}
}

// syncListSelection keeps the highlighted row on the selected partner after
// the agenda is re-sorted.
func (app *PartnersApp) syncListSelection() {
	p, ok := app.Session.Selected()
	if !ok {
		app.list.UnselectAll()
		return
	}
	if i := app.agendaIndex(p.ID); i >= 0 {
		app.list.Select(i)
	}
}

// listName is the row title. Partners whose chosen name is blank still need
// something to click on.
func listName(p partner.Partner) string {
	if name := p.DisplayName(); name != "" {
		return name
	}
	return config.FallbackName
}

// nextLabel renders the nearest anniversary of a row.
func (app *PartnersApp) nextLabel(next engine.Upcoming) string {
	if next.IsNone() {
		return app.GetMsg(config.TKeyLblNextNone)
	}
	msg, ok := app.localize(config.TKeyLblNext, map[string]any{
		"Name": next.Name,
		"Date": next.Date.Format(config.DateFormatDisplay),
	})
	if !ok {
		return next.String()
	}
	return msg
}

// confirmDelete asks before removing the selected partner.
func (app *PartnersApp) confirmDelete() {
	p, ok := app.Session.Selected()
	if !ok {
		app.showNotice(app.Window, session.ErrNoSelection)
		return
	}

	msg, found := app.localize(config.TKeyConfirmDelete, map[string]any{"Name": listName(p)})
	if !found {
		msg = app.GetMsg(config.TKeyBtnDelete) + " " + listName(p)
	}
	dialog.ShowConfirm(app.GetMsg(config.TKeyBtnDelete), msg, func(ok bool) {
		if !ok {
			return
		}
		app.showNotice(app.Window, app.deletePartner(p.ID))
	}, app.Window)
}

// toggleTheme flips light/dark and applies it. A failed save keeps the new
// theme for this session.
func (app *PartnersApp) toggleTheme() {
	dark, err := app.Session.Appearance.Toggle(app.Ctx)
	app.App.Settings().SetTheme(app.Session.Appearance.Theme())
	app.updateActions()

	slog.Info(config.MsgThemeToggled,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyTheme, dark)
	if err != nil {
		slog.Warn(config.ErrThemePersist, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		app.showMessage(app.Window, app.GetMsg(config.TKeyNoticeSaveWarn))
	}
}

// showPairDialog asks for the identifier received over NFC.
func (app *PartnersApp) showPairDialog() {
	entry := widget.NewEntry()
	items := []*widget.FormItem{widget.NewFormItem(app.GetMsg(config.TKeyLblRemoteID), entry)}

	dialog.ShowForm(app.GetMsg(config.TKeyBtnPair), app.GetMsg(config.TKeyBtnPair), app.GetMsg(config.TKeyBtnCancel),
		items, func(ok bool) {
			if ok {
				app.showMessage(app.Window, app.pairingNotice(entry.Text))
			}
		}, app.Window)
}

// pairingNotice confirms remoteID against the selection and returns the
// message to show.
func (app *PartnersApp) pairingNotice(remoteID string) string {
	if err := app.Session.ConfirmPairing(app.Ctx, remoteID); err != nil {
		return app.noticeFor(err)
	}
	return app.GetMsg(config.TKeyNoticePaired)
}

// importPartners reads the configured vCard source in the background and
// stores every card as a new partner.
func (app *PartnersApp) importPartners() {
	cfg := app.importConfig()
	go func() {
		count, err := app.runImport(cfg)
		fyne.Do(func() {
			app.refreshPartners()
			app.showMessage(app.Window, app.importNotice(count, err))
		})
	}()
}

// runImport creates one partner per imported card and returns how many were
// stored. Rejected drafts are logged and skipped.
func (app *PartnersApp) runImport(cfg engine.ImportConfig) (int, error) {
	log := slog.With(config.LogKeyComponent, config.CompUI, config.LogKeyMode, cfg.Mode)
	log.Info(config.MsgImportStart)

	drafts, err := app.Importer.Import(app.Ctx, cfg)
	if err != nil {
		return 0, err
	}

	count := 0
	var persistErr error
	for _, d := range drafts {
		_, err := app.Session.Partners.Create(app.Ctx, d)
		var pe *partner.PersistenceError
		switch {
		case err == nil:
			count++
		case errors.As(err, &pe):
			count++
			persistErr = err
		default:
			log.Warn(config.MsgImportDraft, config.LogKeyError, err)
		}
	}
	log.Info(config.MsgImported, config.LogKeyCount, count)
	return count, persistErr
}

// importNotice summarizes an import for the user.
func (app *PartnersApp) importNotice(count int, err error) string {
	var pe *partner.PersistenceError
	if err != nil && !errors.As(err, &pe) {
		return app.GetMsg(config.TKeyNoticeImportFail)
	}

	msg, ok := app.localize(config.TKeyNoticeImported, map[string]any{"Count": count})
	if !ok {
		msg = fmt.Sprintf(config.FallbackImported, count)
	}
	if err != nil {
		msg += "\n" + app.GetMsg(config.TKeyNoticeSaveWarn)
	}
	return msg
}
