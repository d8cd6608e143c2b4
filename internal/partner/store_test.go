package partner_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
	"github.com/tartampluch/go-partners/internal/storage"
)

// -----------------------------------------------------------------------------
// Test Doubles
// -----------------------------------------------------------------------------

// flakyKV wraps a Memory store and can be told to fail reads or writes.
type flakyKV struct {
	*storage.Memory
	mu       sync.Mutex
	failSet  error
	failGet  error
	setCalls int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{Memory: storage.NewMemory()}
}

func (f *flakyKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	err := f.failGet
	f.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return f.Memory.GetItem(ctx, key)
}

func (f *flakyKV) SetItem(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.setCalls++
	err := f.failSet
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Memory.SetItem(ctx, key, value)
}

func (f *flakyKV) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

// sequentialIDs returns "p1", "p2", ... for readable assertions.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

func newTestStore(t *testing.T) (*partner.Store, *flakyKV) {
	t.Helper()
	kv := newFlakyKV()
	s := partner.NewStore(kv)
	s.NewID = sequentialIDs()
	t.Cleanup(func() { _ = s.Close() })
	return s, kv
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------
// Create / List
// -----------------------------------------------------------------------------

func TestStore_Create_AssignsFreshIDAndDefaults(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	existing, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Existing")})
	require.NoError(t, err)

	p, err := s.Create(ctx, partner.Draft{
		ID:        partner.Ptr(existing.ID), // must be ignored
		FirstName: partner.Ptr("Sam"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.NotEqual(t, existing.ID, p.ID, "Draft ids must never be honoured")
	assert.Equal(t, partner.FirstName, p.PreferredName)
	assert.NotNil(t, p.Anniversaries)
	assert.Empty(t, p.Anniversaries)
	assert.NotNil(t, p.Preferences)
	assert.Empty(t, p.Preferences)
	assert.Equal(t, "Sam", p.DisplayName())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, p, list[1])
	assert.Equal(t, 2, kv.writes(), "Each create persists the collection")
}

func TestStore_Create_SkipsCollidingGeneratedIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ids := []string{"dup", "dup", "", "unique"}
	s.NewID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	a, err := s.Create(context.Background(), partner.Draft{})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), partner.Draft{})
	require.NoError(t, err)

	assert.Equal(t, "dup", a.ID)
	assert.Equal(t, "unique", b.ID)
}

func TestStore_Create_PreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Sam")})
	require.NoError(t, err)
	b, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Ali")})
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
	assert.Equal(t, "Sam", list[0].FirstName)
	assert.Equal(t, "Ali", list[1].FirstName)
}

func TestStore_Create_RejectsInvalidDraft(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft partner.Draft
		want  error
	}{
		{
			name:  "Unknown preferred name",
			draft: partner.Draft{PreferredName: partner.Ptr(partner.NameField("middleName"))},
			want:  partner.ErrInvalidPreferredName,
		},
		{
			name:  "Anniversary without date",
			draft: partner.Draft{Anniversaries: &[]partner.Anniversary{{Name: "First Met"}}},
			want:  partner.ErrInvalidAnniversary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.draft)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, s.List())
	assert.Zero(t, kv.writes())
}

func TestStore_List_ReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Create(context.Background(), partner.Draft{
		Preferences: &[]partner.Preference{{Name: "Coffee", IsLike: true}},
	})
	require.NoError(t, err)

	list := s.List()
	list[0].FirstName = "mutated"
	list[0].Preferences[0].Name = "mutated"

	fresh := s.List()
	assert.Empty(t, fresh[0].FirstName)
	assert.Equal(t, "Coffee", fresh[0].Preferences[0].Name)
}

// -----------------------------------------------------------------------------
// Update
// -----------------------------------------------------------------------------

func TestStore_Update_ChangesOnlySuppliedFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	orig, err := s.Create(ctx, partner.Draft{
		FirstName:     partner.Ptr("Sam"),
		LastName:      partner.Ptr("Rivera"),
		Email:         partner.Ptr("sam@example.com"),
		Anniversaries: &[]partner.Anniversary{{Name: "First Met", Date: date(2020, 3, 10)}},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		draft  partner.Draft
		mutate func(p *partner.Partner)
	}{
		{"Phone", partner.Draft{Phone: partner.Ptr("555-123-4567")}, func(p *partner.Partner) { p.Phone = "555-123-4567" }},
		{"Notes", partner.Draft{Notes: partner.Ptr("likes tea")}, func(p *partner.Partner) { p.Notes = "likes tea" }},
		{"NickName", partner.Draft{NickName: partner.Ptr("Sammy")}, func(p *partner.Partner) { p.NickName = "Sammy" }},
		{
			"Preferences",
			partner.Draft{Preferences: &[]partner.Preference{{Name: "Wine", IsLike: false}}},
			func(p *partner.Partner) { p.Preferences = []partner.Preference{{Name: "Wine", IsLike: false}} },
		},
		{
			"Anniversaries replaced wholesale",
			partner.Draft{Anniversaries: &[]partner.Anniversary{}},
			func(p *partner.Partner) { p.Anniversaries = []partner.Anniversary{} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := s.Get(orig.ID)
			require.NoError(t, err)

			got, err := s.Update(ctx, orig.ID, tt.draft)
			require.NoError(t, err)

			want := before
			tt.mutate(&want)
			assert.Equal(t, want, got)
			assert.Equal(t, orig.ID, got.ID)

			stored, err := s.Get(orig.ID)
			require.NoError(t, err)
			assert.Equal(t, want, stored)
		})
	}
}

func TestStore_Update_IgnoresDraftID(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.Create(context.Background(), partner.Draft{})
	require.NoError(t, err)

	got, err := s.Update(context.Background(), p.ID, partner.Draft{ID: partner.Ptr("hijack")})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestStore_Update_NotFound(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Sam")})
	require.NoError(t, err)
	before := s.List()
	writes := kv.writes()

	_, err = s.Update(ctx, "missing", partner.Draft{FirstName: partner.Ptr("Nobody")})
	require.Error(t, err)
	assert.ErrorIs(t, err, partner.ErrNotFound)

	var nf *partner.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)

	assert.Equal(t, before, s.List(), "Collection must be unchanged")
	assert.Equal(t, writes, kv.writes(), "Nothing must be persisted")
}

func TestStore_Update_InvalidDraftLeavesRecord(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.Create(context.Background(), partner.Draft{FirstName: partner.Ptr("Sam")})
	require.NoError(t, err)

	_, err = s.Update(context.Background(), p.ID, partner.Draft{
		FirstName:     partner.Ptr("Changed"),
		PreferredName: partner.Ptr(partner.NameField("bogus")),
	})
	assert.ErrorIs(t, err, partner.ErrInvalidPreferredName)

	stored, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", stored.FirstName)
}

func TestStore_Update_PreferredNameFallsBackToEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.Create(context.Background(), partner.Draft{FirstName: partner.Ptr("Sam")})
	require.NoError(t, err)

	got, err := s.Update(context.Background(), p.ID, partner.Draft{PreferredName: partner.Ptr(partner.NickName)})
	require.NoError(t, err)
	assert.Equal(t, partner.NickName, got.PreferredName)
	assert.Equal(t, "", got.DisplayName())
}

// -----------------------------------------------------------------------------
// Delete
// -----------------------------------------------------------------------------

func TestStore_Delete(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Sam")})
	require.NoError(t, err)
	b, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Ali")})
	require.NoError(t, err)
	c, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Jo")})
	require.NoError(t, err)

	removed, err := s.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	_, err = s.Get(b.ID)
	assert.ErrorIs(t, err, partner.ErrNotFound)
	assert.Equal(t, 4, kv.writes())
}

func TestStore_Delete_MissingIsNoOp(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Sam")})
	require.NoError(t, err)
	before := s.List()
	writes := kv.writes()

	removed, err := s.Delete(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, before, s.List())
	assert.Equal(t, writes, kv.writes(), "No-op deletes must not write")
}

// -----------------------------------------------------------------------------
// Persistence
// -----------------------------------------------------------------------------

func TestStore_PersistenceFailureKeepsMutation(t *testing.T) {
	s, kv := newTestStore(t)
	boom := errors.New("disk full")
	kv.failSet = boom

	p, err := s.Create(context.Background(), partner.Draft{FirstName: partner.Ptr("Sam")})
	require.Error(t, err)

	var perr *partner.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "Sam", p.FirstName, "The created record is still returned")
	require.Len(t, s.List(), 1, "The in-memory mutation must not be rolled back")

	// Once the store recovers, the next mutation persists everything.
	kv.failSet = nil
	_, err = s.Update(context.Background(), p.ID, partner.Draft{NickName: partner.Ptr("Sammy")})
	require.NoError(t, err)

	blob, ok, err := kv.Memory.GetItem(context.Background(), config.KeyPartners)
	require.NoError(t, err)
	require.True(t, ok)
	stored, err := partner.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, s.List(), stored)
}

// hangKV accepts reads but never finishes a write until released.
type hangKV struct {
	*storage.Memory
	release chan struct{}
}

func (h *hangKV) SetItem(ctx context.Context, key, value string) error {
	<-h.release
	return h.Memory.SetItem(ctx, key, value)
}

func TestStore_HungBackendNeverBlocksMutations(t *testing.T) {
	kv := &hangKV{Memory: storage.NewMemory(), release: make(chan struct{})}
	s := partner.NewStoreWithTimeout(kv, 20*time.Millisecond)
	s.NewID = sequentialIDs()
	t.Cleanup(func() {
		close(kv.release)
		_ = s.Close()
	})

	ctx := context.Background()
	sawQueueFull := false
	for i := 0; i < config.WriteQueueSize+4; i++ {
		done := make(chan error, 1)
		go func() {
			_, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr(fmt.Sprintf("P%d", i))})
			done <- err
		}()

		select {
		case err := <-done:
			var perr *partner.PersistenceError
			require.ErrorAs(t, err, &perr, "create #%d", i)
			if errors.Is(err, storage.ErrQueueFull) {
				sawQueueFull = true
			}
		case <-time.After(time.Second):
			t.Fatalf("Create #%d blocked behind a hung write", i)
		}
	}

	assert.True(t, sawQueueFull, "Overflowing writes must fail fast")
	assert.Len(t, s.List(), config.WriteQueueSize+4, "Every mutation is kept in memory")
}

func TestStore_MutationHonoursCallerContext(t *testing.T) {
	kv := &hangKV{Memory: storage.NewMemory(), release: make(chan struct{})}
	s := partner.NewStoreWithTimeout(kv, time.Minute)
	t.Cleanup(func() {
		close(kv.release)
		_ = s.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Create(ctx, partner.Draft{FirstName: partner.Ptr("Sam")})
	var perr *partner.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, s.List(), 1)
}

func TestStore_RoundTripAcrossSessions(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	first := partner.NewStore(kv)
	_, err := first.Create(ctx, partner.Draft{
		FirstName:     partner.Ptr("Sam"),
		IntimateName:  partner.Ptr("Honey"),
		PreferredName: partner.Ptr(partner.IntimateName),
		Anniversaries: &[]partner.Anniversary{
			{Name: "First Met", Date: date(2020, 3, 10)},
			{Name: "Married", Date: time.Date(2021, 11, 5, 18, 30, 0, 0, time.FixedZone("CET", 3600))},
		},
		Preferences: &[]partner.Preference{{Name: "Coffee", IsLike: true}, {Name: "Loud Music"}},
		Email:       partner.Ptr("sam@example.com"),
		Phone:       partner.Ptr("555-123-4567"),
		Address:     partner.Ptr("1 Main St"),
		Notes:       partner.Ptr("allergic to peanuts"),
	})
	require.NoError(t, err)
	_, err = first.Create(ctx, partner.Draft{FirstName: partner.Ptr("Ali")})
	require.NoError(t, err)
	want := first.List()
	require.NoError(t, first.Close())

	second := partner.NewStore(kv)
	t.Cleanup(func() { _ = second.Close() })
	got := second.Load(ctx)

	assert.Equal(t, want, got)
	assert.Equal(t, want, second.List())
	assert.Equal(t, date(2021, 11, 5), got[0].Anniversaries[1].Date, "Time of day is dropped, the calendar date is kept")
	assert.Equal(t, "Honey", got[0].DisplayName())
}

func TestStore_Load_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(kv *flakyKV)
	}{
		{"Absent", func(kv *flakyKV) {}},
		{"Corrupt JSON", func(kv *flakyKV) {
			_ = kv.Memory.SetItem(context.Background(), config.KeyPartners, "{not json")
		}},
		{"Bad date", func(kv *flakyKV) {
			_ = kv.Memory.SetItem(context.Background(), config.KeyPartners,
				`[{"id":"1","anniversaries":[{"name":"x","date":"yesterday"}]}]`)
		}},
		{"Duplicate ids", func(kv *flakyKV) {
			_ = kv.Memory.SetItem(context.Background(), config.KeyPartners, `[{"id":"1"},{"id":"1"}]`)
		}},
		{"Read failure", func(kv *flakyKV) {
			kv.failGet = errors.New("locked keychain")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv := newTestStore(t)
			_, err := s.Create(context.Background(), partner.Draft{FirstName: partner.Ptr("stale")})
			require.NoError(t, err)
			kv.Memory = storage.NewMemory()
			tt.setup(kv)

			got := s.Load(context.Background())
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Empty(t, s.List())
		})
	}
}

func TestStore_SerializesConcurrentMutations(t *testing.T) {
	kv := storage.NewMemory()
	s := partner.NewStore(kv)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Create(ctx, partner.Draft{FirstName: partner.Ptr(fmt.Sprintf("p%d", i))})
		}(i)
	}
	wg.Wait()
	require.NoError(t, s.Close())

	blob, ok, err := kv.GetItem(ctx, config.KeyPartners)
	require.NoError(t, err)
	require.True(t, ok)
	stored, err := partner.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, s.List(), stored, "The last write must reflect the final collection")
	assert.Len(t, stored, 20)
}
