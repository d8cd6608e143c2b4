package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-partners/internal/config"
)

// ideasTitle names the partner ideas tab after the selected partner. A blank
// display name gets the generic title.
func (app *PartnersApp) ideasTitle() string {
	name, ok := app.Session.IdeasOwner()
	if !ok || name == "" {
		if msg, found := app.localize(config.TKeyWinIdeasDefault, nil); found {
			return msg
		}
		return config.FallbackIdeas
	}
	if msg, found := app.localize(config.TKeyWinIdeasOwner, map[string]any{"Name": name}); found {
		return msg
	}
	return fmt.Sprintf(config.FallbackIdeasFor, name)
}

// ShowIdeasWindow displays the activity catalog. The partner tab is only
// offered while a partner is selected.
func (app *PartnersApp) ShowIdeasWindow() {
	if app.ideasWindow != nil {
		app.ideasWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenIdeas, config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinMyIdeas))
	app.ideasWindow = w
	w.Resize(fyne.NewSize(config.IdeasWinWidth, config.IdeasWinHeight))
	w.SetOnClosed(func() { app.ideasWindow = nil })
	app.refreshIdeas()
	w.Show()
}

// refreshIdeas rebuilds the open ideas window after a selection change or a
// new custom activity.
func (app *PartnersApp) refreshIdeas() {
	w := app.ideasWindow
	if w == nil {
		return
	}
	tabs := app.buildIdeasTabs()
	w.SetTitle(app.GetMsg(config.TKeyWinMyIdeas))
	tabs.OnSelected = func(tab *container.TabItem) { w.SetTitle(tab.Text) }
	w.SetContent(tabs)
}

func (app *PartnersApp) buildIdeasTabs() *container.AppTabs {
	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon(app.GetMsg(config.TKeyWinMyIdeas), theme.HomeIcon(), app.buildActivities()),
	)
	if app.Session.IdeasTabsVisible() {
		tabs.Append(container.NewTabItemWithIcon(app.ideasTitle(), theme.AccountIcon(), app.buildActivities()))
	}
	return tabs
}

// buildActivities lists the catalog by category with a field for custom ideas.
func (app *PartnersApp) buildActivities() fyne.CanvasObject {
	acc := widget.NewAccordion()
	for _, category := range app.Session.Catalog.Categories() {
		labels := make([]fyne.CanvasObject, 0)
		for _, a := range app.Session.Catalog.ByCategory(category) {
			labels = append(labels, widget.NewLabel(a.Name))
		}
		acc.Append(widget.NewAccordionItem(category, container.NewVBox(labels...)))
	}

	custom := widget.NewEntry()
	custom.SetPlaceHolder(app.GetMsg(config.TKeyLblCustomAct))
	add := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAdd), theme.ContentAddIcon(), func() {
		if err := app.addActivity(custom.Text); err != nil {
			app.showNotice(app.ideasWindow, err)
		}
	})

	return container.NewBorder(nil, container.NewBorder(nil, nil, nil, add, custom), nil, nil,
		container.NewVScroll(acc))
}

// addActivity stores a custom idea for this session and redraws the window.
func (app *PartnersApp) addActivity(name string) error {
	a, err := app.Session.Catalog.Add(name)
	if err != nil {
		return err
	}
	slog.Info(config.MsgActivityAdded,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyName, a.Name)
	app.refreshIdeas()
	return nil
}
