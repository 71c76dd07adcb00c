package migrations

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"countries/models/request"
	"countries/notify"
	"countries/repository"
	"countries/service"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed data/countries.yaml
var sampleCountries []byte

func SampleCountries() ([]request.CountryRequest, error) {
	var doc struct {
		Countries []request.CountryRequest `yaml:"countries"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(sampleCountries))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sample countries: %w", err)
	}
	return doc.Countries, nil
}

// Seed fills an empty countries table with the sample data set and returns
// how many rows it inserted. A table that already has rows is left alone.
func Seed(ctx context.Context, db *gorm.DB, log *zap.SugaredLogger) (int, error) {
	// silent mode
	silent := db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	countries := service.NewCountryService(repository.NewCountryStore(silent), notify.Nop{}, log)

	total, err := countries.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		log.Debugw("countries table not empty, skipping seed", "count", total)
		return 0, nil
	}

	samples, err := SampleCountries()
	if err != nil {
		return 0, err
	}
	inserted, err := countries.BulkCreate(ctx, samples)
	if err != nil {
		return 0, fmt.Errorf("seed countries: %w", err)
	}

	log.Infow("sample countries initialized", "count", len(inserted))
	return len(inserted), nil
}
