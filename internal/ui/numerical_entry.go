package ui

import (
	"unicode/utf8"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-partners/internal/partner"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops everything but 0-9. Pasted text bypasses this filter; the
// Validator catches it.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// PhoneEntry groups digits as XXX-XXX-XXXX while the user types.
type PhoneEntry struct {
	widget.Entry
}

// NewPhoneEntry creates a new instance of PhoneEntry.
func NewPhoneEntry() *PhoneEntry {
	entry := &PhoneEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune accepts digits and reformats the whole number after each one.
func (e *PhoneEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	e.Entry.TypedRune(r)

	formatted := partner.FormatPhone(e.Text)
	if formatted != e.Text {
		e.SetText(formatted)
		e.CursorColumn = utf8.RuneCountInString(formatted)
		e.Refresh()
	}
}

// Keyboard requests the phone keypad on mobile devices.
func (e *PhoneEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
