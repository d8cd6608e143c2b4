package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-partners/internal/catalog"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
)

// nameFieldKeys labels each selectable name variant.
var nameFieldKeys = map[partner.NameField]string{
	partner.FirstName:    config.TKeyLblFirstName,
	partner.LastName:     config.TKeyLblLastName,
	partner.NickName:     config.TKeyLblNickName,
	partner.IntimateName: config.TKeyLblIntimateName,
}

type anniversaryRow struct {
	name *widget.SelectEntry
	date *widget.Entry
}

type preferenceRow struct {
	name *widget.SelectEntry
	like *widget.Check
}

// partnerForm holds the widgets of the add/edit window.
type partnerForm struct {
	app *PartnersApp
	id  string // empty when adding

	first, last, nick, intimate *widget.Entry
	preferred                   *widget.Select

	anniversaries []*anniversaryRow
	preferences   []*preferenceRow
	annivBox      *fyne.Container
	prefBox       *fyne.Container

	email   *widget.Entry
	phone   *PhoneEntry
	address *widget.Entry
	notes   *widget.Entry
}

// newPartnerForm builds the widgets pre-filled from p. Pass a zero Partner
// with an empty id to add a new one.
func newPartnerForm(app *PartnersApp, p partner.Partner) *partnerForm {
	f := &partnerForm{
		app:      app,
		id:       p.ID,
		first:    entryWith(p.FirstName),
		last:     entryWith(p.LastName),
		nick:     entryWith(p.NickName),
		intimate: entryWith(p.IntimateName),
		email:    entryWith(p.Email),
		phone:    NewPhoneEntry(),
		address:  entryWith(p.Address),
		notes:    widget.NewMultiLineEntry(),
		annivBox: container.NewVBox(),
		prefBox:  container.NewVBox(),
	}
	f.phone.SetText(partner.FormatPhone(p.Phone))
	f.notes.SetText(p.Notes)

	labels := make([]string, 0, len(partner.NameFields))
	for _, nf := range partner.NameFields {
		labels = append(labels, app.GetMsg(nameFieldKeys[nf]))
	}
	f.preferred = widget.NewSelect(labels, nil)
	preferred := p.PreferredName
	if !preferred.Valid() {
		preferred = partner.FirstName
	}
	for i, nf := range partner.NameFields {
		if nf == preferred {
			f.preferred.SetSelectedIndex(i)
		}
	}

	for _, a := range p.Anniversaries {
		f.addAnniversary(a.Name, a.Date.Format(config.DateFormatISO))
	}
	for _, pref := range p.Preferences {
		f.addPreference(pref.Name, pref.IsLike)
	}
	return f
}

func entryWith(text string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(text)
	return e
}

// addAnniversary appends an editable anniversary row.
func (f *partnerForm) addAnniversary(name, date string) {
	row := &anniversaryRow{
		name: widget.NewSelectEntry(catalog.AnniversaryPresets),
		date: widget.NewEntry(),
	}
	row.name.SetText(name)
	row.date.SetText(date)
	row.date.SetPlaceHolder(config.PlaceholderDate)
	row.date.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if _, err := partner.ParseDate(strings.TrimSpace(s)); err != nil {
			return errors.New(f.app.GetMsg(config.TKeyErrDate))
		}
		return nil
	}
	f.anniversaries = append(f.anniversaries, row)
	f.renderAnniversaries()
}

func (f *partnerForm) removeAnniversary(row *anniversaryRow) {
	for i, r := range f.anniversaries {
		if r == row {
			f.anniversaries = append(f.anniversaries[:i], f.anniversaries[i+1:]...)
			break
		}
	}
	f.renderAnniversaries()
}

func (f *partnerForm) renderAnniversaries() {
	objects := make([]fyne.CanvasObject, 0, len(f.anniversaries))
	for _, row := range f.anniversaries {
		remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { f.removeAnniversary(row) })
		objects = append(objects, container.NewBorder(nil, nil, nil, remove,
			container.NewGridWithColumns(config.LayoutColumnsDouble, row.name, row.date)))
	}
	f.annivBox.Objects = objects
	f.annivBox.Refresh()
}

// addPreference appends an editable like/dislike row.
func (f *partnerForm) addPreference(name string, like bool) {
	row := &preferenceRow{
		name: widget.NewSelectEntry(catalog.CommonPreferences),
		like: widget.NewCheck(f.app.GetMsg(config.TKeyLblLike), nil),
	}
	row.name.SetText(name)
	row.like.SetChecked(like)
	f.preferences = append(f.preferences, row)
	f.renderPreferences()
}

func (f *partnerForm) removePreference(row *preferenceRow) {
	for i, r := range f.preferences {
		if r == row {
			f.preferences = append(f.preferences[:i], f.preferences[i+1:]...)
			break
		}
	}
	f.renderPreferences()
}

func (f *partnerForm) renderPreferences() {
	objects := make([]fyne.CanvasObject, 0, len(f.preferences))
	for _, row := range f.preferences {
		remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { f.removePreference(row) })
		objects = append(objects, container.NewBorder(nil, nil, nil,
			container.NewHBox(row.like, remove), row.name))
	}
	f.prefBox.Objects = objects
	f.prefBox.Refresh()
}

// draft reads the widgets into a full draft. Rows left completely blank are
// dropped; a row with an unreadable date rejects the whole form.
func (f *partnerForm) draft() (partner.Draft, error) {
	idx := f.preferred.SelectedIndex()
	if idx < 0 || idx >= len(partner.NameFields) {
		return partner.Draft{}, partner.ErrInvalidPreferredName
	}

	anniversaries := make([]partner.Anniversary, 0, len(f.anniversaries))
	for i, row := range f.anniversaries {
		name := strings.TrimSpace(row.name.Text)
		raw := strings.TrimSpace(row.date.Text)
		if name == "" && raw == "" {
			continue
		}
		date, err := partner.ParseDate(raw)
		if err != nil {
			return partner.Draft{}, fmt.Errorf("%w: #%d %q: %v", partner.ErrInvalidAnniversary, i, name, err)
		}
		anniversaries = append(anniversaries, partner.Anniversary{Name: name, Date: date})
	}

	preferences := make([]partner.Preference, 0, len(f.preferences))
	for _, row := range f.preferences {
		name := strings.TrimSpace(row.name.Text)
		if name == "" {
			continue
		}
		preferences = append(preferences, partner.Preference{Name: name, IsLike: row.like.Checked})
	}

	return partner.Draft{
		FirstName:     partner.Ptr(strings.TrimSpace(f.first.Text)),
		LastName:      partner.Ptr(strings.TrimSpace(f.last.Text)),
		NickName:      partner.Ptr(strings.TrimSpace(f.nick.Text)),
		IntimateName:  partner.Ptr(strings.TrimSpace(f.intimate.Text)),
		PreferredName: partner.Ptr(partner.NameFields[idx]),
		Anniversaries: &anniversaries,
		Preferences:   &preferences,
		Email:         partner.Ptr(strings.TrimSpace(f.email.Text)),
		Phone:         partner.Ptr(partner.FormatPhone(f.phone.Text)),
		Address:       partner.Ptr(strings.TrimSpace(f.address.Text)),
		Notes:         partner.Ptr(f.notes.Text),
	}, nil
}

// submit saves the form. It reports whether the window can close: a save
// that only failed to reach storage still closes, with a warning.
func (f *partnerForm) submit(w fyne.Window) bool {
	d, err := f.draft()
	if err != nil {
		f.app.showNotice(w, err)
		return false
	}

	_, err = f.app.savePartner(f.id, d)
	var persistErr *partner.PersistenceError
	switch {
	case err == nil:
		return true
	case errors.As(err, &persistErr):
		f.app.showNotice(f.app.Window, err)
		return true
	default:
		f.app.showNotice(w, err)
		return false
	}
}

// content lays the form out in cards.
func (f *partnerForm) content(onSave, onCancel func()) fyne.CanvasObject {
	app := f.app

	names := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblFirstName), f.first),
		widget.NewFormItem(app.GetMsg(config.TKeyLblLastName), f.last),
		widget.NewFormItem(app.GetMsg(config.TKeyLblNickName), f.nick),
		widget.NewFormItem(app.GetMsg(config.TKeyLblIntimateName), f.intimate),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPreferred), f.preferred),
	)

	addAnniv := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAddAnniv), theme.ContentAddIcon(), func() {
		f.addAnniversary("", "")
	})
	addPref := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAddPref), theme.ContentAddIcon(), func() {
		f.addPreference("", true)
	})

	contact := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblEmail), f.email),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPhone), f.phone),
		widget.NewFormItem(app.GetMsg(config.TKeyLblAddress), f.address),
		widget.NewFormItem(app.GetMsg(config.TKeyLblNotes), f.notes),
	)

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), onSave)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), onCancel)

	cards := container.NewVBox(
		widget.NewCard(app.GetMsg(config.TKeyLblName), "", names),
		widget.NewCard(app.GetMsg(config.TKeyLblAnniversaries), "", container.NewVBox(f.annivBox, addAnniv)),
		widget.NewCard(app.GetMsg(config.TKeyLblPreferences), "", container.NewVBox(f.prefBox, addPref)),
		widget.NewCard(app.GetMsg(config.TKeyLblContact), "", contact),
	)
	buttons := container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave)
	return container.NewBorder(nil, container.NewPadded(buttons), nil, nil, container.NewVScroll(container.NewPadded(cards)))
}

// ShowPartnerForm opens the add form for an empty id and the edit form
// otherwise. Only one form is open at a time.
func (app *PartnersApp) ShowPartnerForm(id string) {
	if app.formWindow != nil {
		slog.Debug(config.MsgWindowFocus, config.LogKeyComponent, config.CompUI)
		app.formWindow.RequestFocus()
		return
	}

	p := partner.Partner{PreferredName: partner.FirstName}
	title := app.GetMsg(config.TKeyWinAddPartner)
	if id != "" {
		existing, err := app.Session.Partners.Get(id)
		if err != nil {
			app.showNotice(app.Window, err)
			return
		}
		p = existing
		title = app.GetMsg(config.TKeyWinEditPartner)
	}

	slog.Info(config.MsgOpenForm, config.LogKeyComponent, config.CompUI, config.LogKeyID, id)
	w := app.App.NewWindow(title)
	app.formWindow = w

	f := newPartnerForm(app, p)
	w.SetContent(f.content(func() {
		if f.submit(w) {
			w.Close()
		}
	}, w.Close))
	w.Resize(fyne.NewSize(config.FormWinWidth, config.FormWinHeight))
	w.SetOnClosed(func() { app.formWindow = nil })
	w.Show()
}
