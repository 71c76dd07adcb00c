package request

import (
	"strings"
	"testing"

	"countries/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestCountryRequestValidate(t *testing.T) {
	neg := int64(-1)
	zero := int64(0)

	tests := []struct {
		name string
		req  CountryRequest
		want []string
	}{
		{"valid", CountryRequest{Name: "Peru", Continent: "South America"}, nil},
		{"zero population", CountryRequest{Name: "Peru", Continent: "South America", Population: &zero}, nil},
		{"blank name", CountryRequest{Name: "   ", Continent: "Asia"}, []string{"Country name is required"}},
		{"short name", CountryRequest{Name: "X", Continent: "Asia"}, []string{"Country name must be between 2 and 100 characters"}},
		{"long name", CountryRequest{Name: strings.Repeat("a", 101), Continent: "Asia"}, []string{"Country name must be between 2 and 100 characters"}},
		{"max name", CountryRequest{Name: strings.Repeat("a", 100), Continent: "Asia"}, nil},
		{"multibyte name", CountryRequest{Name: "Éé", Continent: "Asia"}, nil},
		{"missing continent", CountryRequest{Name: "Peru"}, []string{"Continent is required"}},
		{"long continent", CountryRequest{Name: "Peru", Continent: strings.Repeat("c", 51)}, []string{"Continent must be between 2 and 50 characters"}},
		{"negative population", CountryRequest{Name: "Peru", Continent: "South America", Population: &neg}, []string{"Population must not be negative"}},
		{"everything wrong", CountryRequest{Population: &neg}, []string{
			"Country name is required",
			"Continent is required",
			"Population must not be negative",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var got []string
			for _, e := range multierr.Errors(err) {
				got = append(got, e.Error())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyKeepsID(t *testing.T) {
	capital := "Lima"
	m := &models.Country{ID: 7, Name: "Old", Continent: "Old", Capital: &capital}
	r := CountryRequest{Name: "Peru", Continent: "South America"}
	r.Apply(m)

	assert.Equal(t, uint(7), m.ID)
	assert.Equal(t, "Peru", m.Name)
	assert.Nil(t, m.Capital)
}
