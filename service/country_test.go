package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"countries/models"
	"countries/models/request"
	"countries/notify"
	"countries/repository"
	"countries/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	action, details string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, action, details string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{action, details})
	return n.err
}

func newTestService(t *testing.T) (*CountryService, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	store := repository.NewCountryStore(testutil.OpenDB(t))
	return NewCountryService(store, n, nil), n
}

func req(name, continent string, population *int64) request.CountryRequest {
	return request.CountryRequest{Name: name, Continent: continent, Population: population}
}

func TestCreateThenGet(t *testing.T) {
	s, n := newTestService(t)
	ctx := context.Background()

	in := request.CountryRequest{
		Name:       "India",
		Continent:  "Asia",
		Population: testutil.Int64(1380004385),
		Capital:    testutil.String("New Delhi"),
		Area:       testutil.Float64(3287263),
		Currency:   testutil.String("INR"),
		Language:   testutil.String("Hindi"),
	}
	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	exists, err := s.ExistsByName(ctx, "India")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, []event{{notify.ActionCountryAdded, "India"}}, n.events)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	s, n := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, req("Japan", "Asia", nil))
	require.NoError(t, err)

	_, err = s.Create(ctx, req("Japan", "Asia", nil))
	assert.ErrorIs(t, err, ErrConflict)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, n.events, 1)
}

// staleStore never sees existing names, so only the unique index can
// reject a duplicate.
type staleStore struct {
	repository.CountryStore
}

func (staleStore) ExistsByName(context.Context, string) (bool, error) { return false, nil }

func (s staleStore) Transaction(ctx context.Context, fn func(repository.CountryStore) error) error {
	return s.CountryStore.Transaction(ctx, func(tx repository.CountryStore) error {
		return fn(staleStore{tx})
	})
}

func TestCreateDuplicateCaughtByIndex(t *testing.T) {
	n := &recordingNotifier{}
	store := repository.NewCountryStore(testutil.OpenDB(t))
	s := NewCountryService(staleStore{store}, n, nil)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &models.Country{Name: "Peru", Continent: "South America"}))

	_, err := s.Create(ctx, req("Peru", "South America", nil))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, n.events)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateValidation(t *testing.T) {
	s, n := newTestService(t)

	_, err := s.Create(context.Background(), request.CountryRequest{Name: "X", Population: testutil.Int64(-5)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"Country name must be between 2 and 100 characters",
		"Continent is required",
		"Population must not be negative",
	}, verr.Problems())
	assert.Empty(t, n.events)
}

func TestNotificationFailureDoesNotFailCreate(t *testing.T) {
	s, n := newTestService(t)
	n.err = errors.New("function unavailable")
	ctx := context.Background()

	created, err := s.Create(ctx, req("Kenya", "Africa", nil))
	require.NoError(t, err)

	_, err = s.GetByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.Len(t, n.events, 2)
}

func TestUpdate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, request.CountryRequest{Name: "Burma", Continent: "Asia", Capital: testutil.String("Rangoon")})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, req("Myanmar", "Asia", testutil.Int64(54409800)))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Myanmar", updated.Name)
	assert.Nil(t, updated.Capital)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = s.GetByName(ctx, "Burma")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMissingLeavesStoreUnchanged(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, req("Chile", "South America", nil))
	require.NoError(t, err)
	before, err := s.ListAll(ctx)
	require.NoError(t, err)

	_, err = s.Update(ctx, 999, req("Peru", "South America", nil))
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateToTakenNameIsConflict(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	a, err := s.Create(ctx, req("Sudan", "Africa", nil))
	require.NoError(t, err)
	_, err = s.Create(ctx, req("Chad", "Africa", nil))
	require.NoError(t, err)

	_, err = s.Update(ctx, a.ID, req("Chad", "Africa", nil))
	assert.ErrorIs(t, err, ErrConflict)

	// keeping the same name is fine
	_, err = s.Update(ctx, a.ID, req("Sudan", "Africa", testutil.Int64(43849260)))
	assert.NoError(t, err)
}

func TestDeleteTwice(t *testing.T) {
	s, n := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, req("Fiji", "Australia", nil))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)

	exists, err := s.ExistsByName(ctx, "Fiji")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, []event{
		{notify.ActionCountryAdded, "Fiji"},
		{notify.ActionCountryDeleted, "ID=" + itoa(created.ID)},
	}, n.events)
}

func TestBulkCreateSkipsDuplicates(t *testing.T) {
	s, n := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, req("Spain", "Europe", nil))
	require.NoError(t, err)

	inserted, err := s.BulkCreate(ctx, []request.CountryRequest{
		req("X-land", "Europe", testutil.Int64(1)),
		req("Spain", "Europe", nil),
		req("X-land", "Asia", testutil.Int64(2)),
		req("Italy", "Europe", nil),
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, "X-land", inserted[0].Name)
	assert.Equal(t, "Europe", inserted[0].Continent)
	assert.Equal(t, "Italy", inserted[1].Name)

	all, err := s.SearchByName(ctx, "x-land")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// only the single create notified
	assert.Len(t, n.events, 1)
}

func TestBulkCreateRejectsInvalidBatch(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.BulkCreate(ctx, []request.CountryRequest{
		req("Norway", "Europe", nil),
		req("", "Europe", nil),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"countries[1]: Country name is required"}, verr.Problems())

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBulkCreateEmpty(t *testing.T) {
	s, _ := newTestService(t)
	inserted, err := s.BulkCreate(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, inserted)
	assert.Empty(t, inserted)
}

func TestPopulationThreshold(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.BulkCreate(ctx, []request.CountryRequest{
		req("India", "Asia", testutil.Int64(1380004385)),
		req("Japan", "Asia", testutil.Int64(125836021)),
		req("Nauru", "Australia", nil),
		req("Brazil", "South America", testutil.Int64(100000000)),
	})
	require.NoError(t, err)

	found, err := s.ListWithPopulationGreaterThan(ctx, 1_000_000_000)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "India", found[0].Name)

	found, err = s.ListWithPopulationGreaterThan(ctx, 100000000)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "India", found[0].Name)
	assert.Equal(t, "Japan", found[1].Name)
	for i := 1; i < len(found); i++ {
		assert.GreaterOrEqual(t, *found[i-1].Population, *found[i].Population)
	}
}

func TestDistinctContinents(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.BulkCreate(ctx, []request.CountryRequest{
		req("Japan", "Asia", nil),
		req("France", "Europe", nil),
		req("India", "Asia", nil),
	})
	require.NoError(t, err)

	continents, err := s.ListDistinctContinents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asia", "Europe"}, continents)
}
