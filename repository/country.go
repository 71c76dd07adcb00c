package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"countries/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound      = errors.New("country not found")
	ErrDuplicateName = errors.New("country name already exists")
)

// CountryStore is the persistence boundary for country rows.
type CountryStore interface {
	Insert(ctx context.Context, c *models.Country) error
	Get(ctx context.Context, id uint) (*models.Country, error)
	GetByName(ctx context.Context, name string) (*models.Country, error)
	ListAll(ctx context.Context) ([]models.Country, error)
	ListOrderedByName(ctx context.Context) ([]models.Country, error)
	ListByContinent(ctx context.Context, continent string) ([]models.Country, error)
	SearchByName(ctx context.Context, fragment string) ([]models.Country, error)
	SearchByContinent(ctx context.Context, fragment string) ([]models.Country, error)
	ListPopulationGreaterThan(ctx context.Context, threshold int64) ([]models.Country, error)
	DistinctContinents(ctx context.Context) ([]string, error)
	CountByContinent(ctx context.Context) ([]models.ContinentCount, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, c *models.Country) error
	DeleteByID(ctx context.Context, id uint) error
	// Transaction runs fn against a store bound to a single transaction.
	Transaction(ctx context.Context, fn func(CountryStore) error) error
}

type countryStore struct {
	db *gorm.DB
}

func NewCountryStore(db *gorm.DB) CountryStore {
	return &countryStore{db: db}
}

func (s *countryStore) Insert(ctx context.Context, c *models.Country) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *countryStore) Get(ctx context.Context, id uint) (*models.Country, error) {
	var country models.Country
	if err := s.db.WithContext(ctx).First(&country, id).Error; err != nil {
		return nil, translate(err)
	}
	return &country, nil
}

func (s *countryStore) GetByName(ctx context.Context, name string) (*models.Country, error) {
	var country models.Country
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&country).Error; err != nil {
		return nil, translate(err)
	}
	return &country, nil
}

func (s *countryStore) ListAll(ctx context.Context) ([]models.Country, error) {
	return s.find(s.db.WithContext(ctx).Order("continent ASC").Order("name ASC"))
}

func (s *countryStore) ListOrderedByName(ctx context.Context) ([]models.Country, error) {
	return s.find(s.db.WithContext(ctx).Order("name ASC"))
}

func (s *countryStore) ListByContinent(ctx context.Context, continent string) ([]models.Country, error) {
	return s.find(s.db.WithContext(ctx).Where("continent = ?", continent).Order("name ASC"))
}

func (s *countryStore) SearchByName(ctx context.Context, fragment string) ([]models.Country, error) {
	return s.searchColumn(ctx, "name", fragment)
}

func (s *countryStore) SearchByContinent(ctx context.Context, fragment string) ([]models.Country, error) {
	return s.searchColumn(ctx, "continent", fragment)
}

func (s *countryStore) ListPopulationGreaterThan(ctx context.Context, threshold int64) ([]models.Country, error) {
	// NULL > n is never true, so countries without a population drop out
	return s.find(s.db.WithContext(ctx).
		Where("population > ?", threshold).
		Order("population DESC").
		Order("name ASC"))
}

func (s *countryStore) DistinctContinents(ctx context.Context) ([]string, error) {
	continents := []string{}
	err := s.db.WithContext(ctx).
		Model(&models.Country{}).
		Distinct().
		Order("continent ASC").
		Pluck("continent", &continents).Error
	if err != nil {
		return nil, translate(err)
	}
	return continents, nil
}

func (s *countryStore) CountByContinent(ctx context.Context) ([]models.ContinentCount, error) {
	counts := []models.ContinentCount{}
	err := s.db.WithContext(ctx).
		Model(&models.Country{}).
		Select("continent, COUNT(*) AS total").
		Group("continent").
		Order("total DESC").
		Order("continent ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, translate(err)
	}
	return counts, nil
}

func (s *countryStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Country{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (s *countryStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Country{}).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Save overwrites every mutable column of an existing row, nulls included.
// It never inserts.
func (s *countryStore) Save(ctx context.Context, c *models.Country) error {
	result := s.db.WithContext(ctx).
		Model(&models.Country{ID: c.ID}).
		Select("name", "continent", "population", "capital", "area", "currency", "language").
		Updates(c)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *countryStore) DeleteByID(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Country{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *countryStore) Transaction(ctx context.Context, fn func(CountryStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&countryStore{db: tx})
	})
}

func (s *countryStore) find(q *gorm.DB) ([]models.Country, error) {
	countries := []models.Country{}
	if err := q.Find(&countries).Error; err != nil {
		return nil, translate(err)
	}
	return countries, nil
}

// searchColumn matches fragment anywhere in column, ignoring case.
func (s *countryStore) searchColumn(ctx context.Context, column, fragment string) ([]models.Country, error) {
	clause := fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, lowerFunc(s.db), column)
	return s.find(s.db.WithContext(ctx).Where(clause, containsPattern(fragment)).Order("id ASC"))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicateName
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}

	return false
}
