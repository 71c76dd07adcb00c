package service

import (
	"context"
	"strconv"
	"testing"

	"countries/models"
	"countries/models/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestStatistics(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	stats := NewStatisticsService(s)

	empty, err := stats.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCountries)
	assert.Empty(t, empty.Continents)
	assert.Empty(t, empty.CountriesByContinent)

	_, err = s.BulkCreate(ctx, []request.CountryRequest{
		req("Kenya", "Africa", nil),
		req("Japan", "Asia", nil),
		req("India", "Asia", nil),
		req("Egypt", "Africa", nil),
		req("Peru", "South America", nil),
		req("Laos", "Asia", nil),
	})
	require.NoError(t, err)

	got, err := stats.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.TotalCountries)
	assert.Equal(t, []string{"Africa", "Asia", "South America"}, got.Continents)
	assert.Equal(t, []models.ContinentCount{
		{Continent: "Asia", Count: 3},
		{Continent: "Africa", Count: 2},
		{Continent: "South America", Count: 1},
	}, got.CountriesByContinent)

	overview, err := stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, got.TotalCountries, overview.TotalCountries)
	assert.Equal(t, got.Continents, overview.Continents)
}
