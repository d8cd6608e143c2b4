package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
)

// DecodeVCards reads a vCard stream and turns every card into a partner
// draft. Unparseable dates are skipped and logged. A syntax error ends the
// stream: the cards read before it are kept, and it is only an error when
// nothing could be read at all.
func DecodeVCards(ctx context.Context, r io.Reader) ([]partner.Draft, error) {
	decoder := vcard.NewDecoder(r)
	var drafts []partner.Draft
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.WarnContext(ctx, config.MsgSkippedCard,
				config.LogKeyComponent, config.CompImport,
				config.LogKeyError, err)
			// The decoder cannot resynchronize after a syntax error.
			if total == 0 {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			break
		}
		total++
		drafts = append(drafts, draftFromCard(ctx, card))
	}

	slog.InfoContext(ctx, config.MsgImported,
		config.LogKeyComponent, config.CompImport,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, total),
			slog.Int(config.LogKeyCount, len(drafts)),
		),
	)
	return drafts, nil
}

func draftFromCard(ctx context.Context, card vcard.Card) partner.Draft {
	d := partner.Draft{
		PreferredName: partner.Ptr(partner.FirstName),
		Anniversaries: &[]partner.Anniversary{},
	}

	// Name strategy: N (structured) > FN (formatted) > fallback.
	switch n := card.Name(); {
	case n != nil && (n.GivenName != "" || n.FamilyName != ""):
		d.FirstName = partner.Ptr(n.GivenName)
		d.LastName = partner.Ptr(n.FamilyName)
	case card.PreferredValue(vcard.FieldFormattedName) != "":
		d.FirstName = partner.Ptr(card.PreferredValue(vcard.FieldFormattedName))
	default:
		d.FirstName = partner.Ptr(config.FallbackName)
	}

	if nick := card.PreferredValue(vcard.FieldNickname); nick != "" {
		d.NickName = partner.Ptr(nick)
	}
	if email := card.PreferredValue(vcard.FieldEmail); email != "" {
		d.Email = partner.Ptr(email)
	}
	if tel := card.PreferredValue(vcard.FieldTelephone); tel != "" {
		d.Phone = partner.Ptr(partner.FormatPhone(tel))
	}
	if addr := card.Address(); addr != nil {
		if s := formatAddress(addr); s != "" {
			d.Address = partner.Ptr(s)
		}
	}
	if note := card.PreferredValue(vcard.FieldNote); note != "" {
		d.Notes = partner.Ptr(note)
	}

	dated := []struct{ field, name string }{
		{vcard.FieldBirthday, config.ImportBirthdayName},
		{vcard.FieldAnniversary, config.ImportWeddingName},
	}
	for _, f := range dated {
		raw := card.Value(f.field)
		if raw == "" {
			continue
		}
		date, err := parseCardDate(raw)
		if err != nil {
			slog.DebugContext(ctx, config.MsgSkippedDate,
				config.LogKeyComponent, config.CompImport,
				config.LogKeyValue, raw)
			continue
		}
		*d.Anniversaries = append(*d.Anniversaries, partner.Anniversary{Name: f.name, Date: date})
	}
	return d
}

func formatAddress(a *vcard.Address) string {
	parts := []string{a.StreetAddress, a.ExtendedAddress, a.PostOfficeBox, a.Locality, a.Region, a.PostalCode, a.Country}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// parseCardDate handles the vCard date layouts seen in the wild. Dates
// without a year ("--MM-DD") land on a leap year so Feb 29 survives.
func parseCardDate(value string) (time.Time, error) {
	formatsWithYear := []string{
		config.DateFormatISO,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return partner.CivilDate(t), nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}

// EncodeVCards writes one vCard 4.0 per partner. The first anniversary named
// like an imported birthday or wedding maps back to BDAY or ANNIVERSARY;
// every other anniversary is kept as a NOTE line so nothing is lost.
func EncodeVCards(w io.Writer, partners []partner.Partner) error {
	enc := vcard.NewEncoder(w)
	for _, p := range partners {
		if err := enc.Encode(cardFromPartner(p)); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

func cardFromPartner(p partner.Partner) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldUID, p.ID)

	fn := p.DisplayName()
	if fn == "" {
		fn = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if fn == "" {
		fn = config.FallbackName
	}
	card.SetValue(vcard.FieldFormattedName, fn)
	card.SetName(&vcard.Name{GivenName: p.FirstName, FamilyName: p.LastName})

	setIf := func(field, value string) {
		if value != "" {
			card.SetValue(field, value)
		}
	}
	setIf(vcard.FieldNickname, p.NickName)
	setIf(vcard.FieldEmail, p.Email)
	setIf(vcard.FieldTelephone, p.Phone)
	if p.Address != "" {
		card.AddAddress(&vcard.Address{StreetAddress: p.Address})
	}

	var notes []string
	if p.Notes != "" {
		notes = append(notes, p.Notes)
	}
	for _, a := range p.Anniversaries {
		date := a.Date.Format(config.DateFormatISO)
		switch {
		case a.Name == config.ImportBirthdayName && card.Value(vcard.FieldBirthday) == "":
			card.SetValue(vcard.FieldBirthday, date)
		case a.Name == config.ImportWeddingName && card.Value(vcard.FieldAnniversary) == "":
			card.SetValue(vcard.FieldAnniversary, date)
		default:
			notes = append(notes, fmt.Sprintf(config.FallbackNext, a.Name, date))
		}
	}
	if len(notes) > 0 {
		card.SetValue(vcard.FieldNote, strings.Join(notes, "\n"))
	}

	vcard.ToV4(card)
	return card
}
