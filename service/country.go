package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"countries/models"
	"countries/models/request"
	"countries/notify"
	"countries/repository"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("country not found")
	ErrConflict = errors.New("country already exists")
)

// ValidationError carries every rule a request broke.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Problems returns the individual rule violations.
func (e *ValidationError) Problems() []string {
	errs := multierr.Errors(e.Err)
	problems := make([]string, 0, len(errs))
	for _, err := range errs {
		problems = append(problems, err.Error())
	}
	return problems
}

type CountryService struct {
	store    repository.CountryStore
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewCountryService(store repository.CountryStore, notifier notify.Notifier, logger *zap.SugaredLogger) *CountryService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CountryService{store: store, notifier: notifier, logger: logger}
}

// ListAll returns every country ordered by continent, then name.
func (s *CountryService) ListAll(ctx context.Context) ([]models.Country, error) {
	return s.store.ListAll(ctx)
}

func (s *CountryService) ListOrderedByName(ctx context.Context) ([]models.Country, error) {
	return s.store.ListOrderedByName(ctx)
}

func (s *CountryService) GetByID(ctx context.Context, id uint) (*models.Country, error) {
	c, err := s.store.Get(ctx, id)
	return c, mapStoreError(err)
}

func (s *CountryService) GetByName(ctx context.Context, name string) (*models.Country, error) {
	c, err := s.store.GetByName(ctx, name)
	return c, mapStoreError(err)
}

func (s *CountryService) ListByContinent(ctx context.Context, continent string) ([]models.Country, error) {
	return s.store.ListByContinent(ctx, continent)
}

func (s *CountryService) SearchByName(ctx context.Context, fragment string) ([]models.Country, error) {
	return s.store.SearchByName(ctx, fragment)
}

func (s *CountryService) SearchByContinent(ctx context.Context, fragment string) ([]models.Country, error) {
	return s.store.SearchByContinent(ctx, fragment)
}

func (s *CountryService) ListWithPopulationGreaterThan(ctx context.Context, threshold int64) ([]models.Country, error) {
	return s.store.ListPopulationGreaterThan(ctx, threshold)
}

func (s *CountryService) ListDistinctContinents(ctx context.Context) ([]string, error) {
	return s.store.DistinctContinents(ctx)
}

func (s *CountryService) CountByContinent(ctx context.Context) ([]models.ContinentCount, error) {
	return s.store.CountByContinent(ctx)
}

func (s *CountryService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.store.ExistsByName(ctx, name)
}

func (s *CountryService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Create persists a new country. A name that is already taken yields
// ErrConflict whether the pre-check or the unique index catches it.
func (s *CountryService) Create(ctx context.Context, req request.CountryRequest) (*models.Country, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	country := req.ToModel()
	err := s.store.Transaction(ctx, func(tx repository.CountryStore) error {
		exists, err := tx.ExistsByName(ctx, country.Name)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrDuplicateName
		}
		return tx.Insert(ctx, country)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.notify(ctx, notify.ActionCountryAdded, country.Name)
	return country, nil
}

// Update replaces every mutable field of the country with the given id.
func (s *CountryService) Update(ctx context.Context, id uint, req request.CountryRequest) (*models.Country, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var country *models.Country
	err := s.store.Transaction(ctx, func(tx repository.CountryStore) error {
		existing, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}

		if existing.Name != req.Name {
			other, err := tx.GetByName(ctx, req.Name)
			switch {
			case err == nil && other.ID != id:
				return repository.ErrDuplicateName
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}

		req.Apply(existing)
		if err := tx.Save(ctx, existing); err != nil {
			return err
		}
		country = existing
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return country, nil
}

func (s *CountryService) Delete(ctx context.Context, id uint) error {
	if err := mapStoreError(s.store.DeleteByID(ctx, id)); err != nil {
		return err
	}
	s.notify(ctx, notify.ActionCountryDeleted, "ID="+strconv.FormatUint(uint64(id), 10))
	return nil
}

// BulkCreate inserts the requests in order, skipping any whose name is
// already stored, including names inserted earlier in the same batch. The
// whole batch is validated before anything is written.
func (s *CountryService) BulkCreate(ctx context.Context, reqs []request.CountryRequest) ([]models.Country, error) {
	var verr error
	for i := range reqs {
		for _, err := range multierr.Errors(reqs[i].Validate()) {
			verr = multierr.Append(verr, fmt.Errorf("countries[%d]: %w", i, err))
		}
	}
	if verr != nil {
		return nil, &ValidationError{Err: verr}
	}

	inserted := []models.Country{}
	err := s.store.Transaction(ctx, func(tx repository.CountryStore) error {
		for i := range reqs {
			exists, err := tx.ExistsByName(ctx, reqs[i].Name)
			if err != nil {
				return err
			}
			if exists {
				s.logger.Debugw("skipping existing country", "name", reqs[i].Name)
				continue
			}

			country := reqs[i].ToModel()
			if err := tx.Insert(ctx, country); err != nil {
				return err
			}
			inserted = append(inserted, *country)
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return inserted, nil
}

// notify never fails the caller; the mutation has already been committed.
func (s *CountryService) notify(ctx context.Context, action, details string) {
	if err := s.notifier.Notify(context.WithoutCancel(ctx), action, details); err != nil {
		s.logger.Warnw("notification failed", "action", action, "details", details, "error", err)
	}
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateName):
		return ErrConflict
	}
	return err
}
