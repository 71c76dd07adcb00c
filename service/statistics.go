package service

import (
	"context"

	"countries/models"
)

type Statistics struct {
	TotalCountries       int64                   `json:"totalCountries"`
	Continents           []string                `json:"continents"`
	CountriesByContinent []models.ContinentCount `json:"countriesByContinent"`
}

type Overview struct {
	TotalCountries int64    `json:"totalCountries"`
	Continents     []string `json:"continents"`
}

// StatisticsService assembles the read-only views shown on the dashboard pages.
type StatisticsService struct {
	countries *CountryService
}

func NewStatisticsService(countries *CountryService) *StatisticsService {
	return &StatisticsService{countries: countries}
}

func (s *StatisticsService) Overview(ctx context.Context) (*Overview, error) {
	total, err := s.countries.Count(ctx)
	if err != nil {
		return nil, err
	}
	continents, err := s.countries.ListDistinctContinents(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{TotalCountries: total, Continents: continents}, nil
}

func (s *StatisticsService) Statistics(ctx context.Context) (*Statistics, error) {
	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	byContinent, err := s.countries.CountByContinent(ctx)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		TotalCountries:       overview.TotalCountries,
		Continents:           overview.Continents,
		CountriesByContinent: byContinent,
	}, nil
}
