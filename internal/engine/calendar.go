package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
)

// FeedGenerator renders the partners' anniversaries as a subscribable
// iCalendar feed.
type FeedGenerator struct {
	Clock Clock

	// FormatSummary lets the UI inject a localized event title.
	FormatSummary func(anniversary, partnerName string) string
}

// Generate builds the calendar and reports how many anniversaries fall today.
// reminderTrigger is an ISO 8601 duration ("-P1D") or "" for no alarm.
func (g *FeedGenerator) Generate(ctx context.Context, partners []partner.Partner, reminderTrigger string) ([]byte, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Anniversaries follow the local calendar; only DTSTAMP is absolute.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, p := range partners {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		name := p.DisplayName()
		for i, a := range p.Anniversaries {
			events, isToday := g.createEvents(p.ID, i, name, a, reminderTrigger, now)
			if isToday {
				today++
				slog.InfoContext(ctx, config.MsgAnnivToday,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyID, p.ID,
					config.LogKeyName, a.Name)
			}
			for _, e := range events {
				e.Props.Set(dtStampProp)
				cal.Children = append(cal.Children, e.Component)
			}
		}
	}

	if len(cal.Children) == 0 {
		// A calendar without components is still a valid feed for clients.
		g.logSuccess(ctx, len(partners), 0, 0, start)
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(ctx, len(partners), len(cal.Children), today, start)
	return buf.Bytes(), today, nil
}

func (g *FeedGenerator) logSuccess(ctx context.Context, partners, events, today int, start time.Time) {
	slog.InfoContext(ctx, config.MsgFeedGenerated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, partners,
		config.LogKeyEvents, events,
		config.LogKeyToday, today,
		config.LogKeyDuration, time.Since(start).Milliseconds())
}

// createEvents emits all-day events for the previous, current and next year
// so calendar clients can scroll without waiting for a refresh. Years before
// the anniversary's own year are skipped.
func (g *FeedGenerator) createEvents(partnerID string, index int, partnerName string, a partner.Anniversary, reminderTrigger string, now time.Time) ([]*ical.Event, bool) {
	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	uidBase := eventUIDBase(partnerID, index, a)

	summary := fmt.Sprintf(config.FallbackSummary, a.Name, partnerName)
	if g.FormatSummary != nil {
		summary = g.FormatSummary(a.Name, partnerName)
	}

	var events []*ical.Event
	isToday := false
	for _, y := range targetYears {
		if y < a.Date.Year() {
			continue
		}

		eventDate := time.Date(y, a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, loc)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

// eventUIDBase derives a UID that stays stable across refreshes as long as the
// anniversary keeps its partner, position, name and date.
func eventUIDBase(partnerID string, index int, a partner.Anniversary) string {
	key := partnerID + "/" + strconv.Itoa(index) + "/" + a.Name
	input := fmt.Sprintf(config.FormatHashInput, key, a.Date.Format(config.DateFormatISO), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value to avoid a VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// ReminderTrigger builds the ISO 8601 duration used for event alarms from the
// reminder preferences. It returns "" when reminders are off or value < 0.
func ReminderTrigger(enabled bool, value int, unit, direction string) string {
	if !enabled || value < 0 {
		return ""
	}

	prefix := config.ISONegativePrefix
	if direction == config.DirAfter {
		prefix = config.ISOPeriodPrefix
	}

	switch unit {
	case config.UnitHours:
		return fmt.Sprintf("%s%s%d%s", prefix, config.ISOTime, value, config.ISOHour)
	case config.UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", prefix, config.ISOTime, value, config.ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", prefix, value, config.ISODay)
	}
}
