package request

import (
	"errors"
	"strings"
	"unicode/utf8"

	"countries/models"

	"go.uber.org/multierr"
)

type CountryRequest struct {
	Name       string   `json:"name" yaml:"name"`
	Continent  string   `json:"continent" yaml:"continent"`
	Population *int64   `json:"population" yaml:"population"`
	Capital    *string  `json:"capital" yaml:"capital"`
	Area       *float64 `json:"area" yaml:"area"`
	Currency   *string  `json:"currency" yaml:"currency"`
	Language   *string  `json:"language" yaml:"language"`
}

// Validate reports every violated rule at once; use multierr.Errors to split them.
func (r *CountryRequest) Validate() error {
	var err error

	if strings.TrimSpace(r.Name) == "" {
		err = multierr.Append(err, errors.New("Country name is required"))
	} else if n := utf8.RuneCountInString(r.Name); n < 2 || n > 100 {
		err = multierr.Append(err, errors.New("Country name must be between 2 and 100 characters"))
	}

	if strings.TrimSpace(r.Continent) == "" {
		err = multierr.Append(err, errors.New("Continent is required"))
	} else if n := utf8.RuneCountInString(r.Continent); n < 2 || n > 50 {
		err = multierr.Append(err, errors.New("Continent must be between 2 and 50 characters"))
	}

	if r.Population != nil && *r.Population < 0 {
		err = multierr.Append(err, errors.New("Population must not be negative"))
	}

	return err
}

// Apply copies every mutable field onto m. The ID is left untouched.
func (r *CountryRequest) Apply(m *models.Country) {
	m.Name = r.Name
	m.Continent = r.Continent
	m.Population = r.Population
	m.Capital = r.Capital
	m.Area = r.Area
	m.Currency = r.Currency
	m.Language = r.Language
}

func (r *CountryRequest) ToModel() *models.Country {
	m := &models.Country{}
	r.Apply(m)
	return m
}
