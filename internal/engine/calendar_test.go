package engine_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/engine"
	"github.com/tartampluch/go-partners/internal/partner"
)

func samWithAnniversaries(annivs ...partner.Anniversary) partner.Partner {
	return partner.Partner{
		ID:            "sam",
		FirstName:     "Sam",
		PreferredName: partner.FirstName,
		Anniversaries: annivs,
	}
}

func decodeCalendar(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func TestFeedGenerator_ThreeYearWindow(t *testing.T) {
	gen := &engine.FeedGenerator{Clock: MockClock{CurrentTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}}
	p := samWithAnniversaries(partner.Anniversary{Name: "First Met", Date: day(2020, 3, 10)})

	data, today, err := gen.Generate(context.Background(), []partner.Partner{p}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, today, "The anniversary falls today")

	cal := decodeCalendar(t, data)
	events := cal.Events()
	require.Len(t, events, 3, "Previous, current and next year")

	uids := map[string]bool{}
	for _, e := range events {
		uid, err := e.Props.Text(config.PropUID)
		require.NoError(t, err)
		uids[uid] = true

		summary, err := e.Props.Text(config.PropSummary)
		require.NoError(t, err)
		assert.Equal(t, "First Met: Sam", summary)
		assert.Empty(t, e.Children, "No alarm without a trigger")
	}
	assert.Len(t, uids, 3, "UIDs are unique per year")
	assert.Contains(t, string(data), "DTSTART;VALUE=DATE:20250310")
}

func TestFeedGenerator_SkipsYearsBeforeOrigin(t *testing.T) {
	gen := &engine.FeedGenerator{Clock: MockClock{CurrentTime: day(2025, 1, 1)}}
	p := samWithAnniversaries(partner.Anniversary{Name: "Married", Date: day(2025, 6, 1)})

	data, today, err := gen.Generate(context.Background(), []partner.Partner{p}, "")
	require.NoError(t, err)
	assert.Zero(t, today)
	assert.Len(t, decodeCalendar(t, data).Events(), 2)
}

func TestFeedGenerator_StableUIDs(t *testing.T) {
	clock := MockClock{CurrentTime: day(2025, 1, 1)}
	p := samWithAnniversaries(partner.Anniversary{Name: "First Met", Date: day(2020, 3, 10)})

	first, _, err := (&engine.FeedGenerator{Clock: clock}).Generate(context.Background(), []partner.Partner{p}, "")
	require.NoError(t, err)
	second, _, err := (&engine.FeedGenerator{Clock: MockClock{CurrentTime: day(2025, 1, 1).Add(time.Hour)}}).
		Generate(context.Background(), []partner.Partner{p}, "")
	require.NoError(t, err)

	uid := func(data []byte) string {
		u, err := decodeCalendar(t, data).Events()[0].Props.Text(config.PropUID)
		require.NoError(t, err)
		return u
	}
	assert.Equal(t, uid(first), uid(second))
}

func TestFeedGenerator_AlarmAndLocalizedSummary(t *testing.T) {
	gen := &engine.FeedGenerator{
		Clock: MockClock{CurrentTime: day(2025, 1, 1)},
		FormatSummary: func(anniversary, name string) string {
			return strings.ToUpper(anniversary) + " / " + name
		},
	}
	p := samWithAnniversaries(partner.Anniversary{Name: "Married", Date: day(2021, 11, 5)})

	data, _, err := gen.Generate(context.Background(), []partner.Partner{p}, "-P1D")
	require.NoError(t, err)

	ics := string(data)
	assert.Contains(t, ics, "SUMMARY:MARRIED / Sam")
	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "TRIGGER:-P1D")
	assert.Contains(t, ics, "ACTION:DISPLAY")
	assert.NotContains(t, ics, "VALUE=TEXT")
}

func TestFeedGenerator_Empty(t *testing.T) {
	gen := &engine.FeedGenerator{Clock: MockClock{CurrentTime: day(2025, 1, 1)}}

	for _, partners := range [][]partner.Partner{nil, {samWithAnniversaries()}} {
		data, today, err := gen.Generate(context.Background(), partners, "-P1D")
		require.NoError(t, err)
		assert.Zero(t, today)
		assert.Equal(t, config.StubVCalendar, string(data))
	}
}

func TestFeedGenerator_Cancelled(t *testing.T) {
	gen := &engine.FeedGenerator{Clock: MockClock{CurrentTime: day(2025, 1, 1)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gen.Generate(ctx, []partner.Partner{samWithAnniversaries()}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReminderTrigger(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		value   int
		unit    string
		dir     string
		want    string
	}{
		{"Disabled", false, 1, config.UnitDays, config.DirBefore, ""},
		{"Negative value", true, -1, config.UnitDays, config.DirBefore, ""},
		{"One day before", true, 1, config.UnitDays, config.DirBefore, "-P1D"},
		{"Two hours before", true, 2, config.UnitHours, config.DirBefore, "-PT2H"},
		{"Thirty minutes after", true, 30, config.UnitMinutes, config.DirAfter, "PT30M"},
		{"Unknown unit defaults to days", true, 3, "w", config.DirAfter, "P3D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ReminderTrigger(tt.enabled, tt.value, tt.unit, tt.dir))
		})
	}
}
