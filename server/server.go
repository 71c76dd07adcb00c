package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"countries/service"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// statsReporter is satisfied by *sql.DB.
type statsReporter interface {
	Stats() sql.DBStats
}

type Server struct {
	countries *service.CountryService
	stats     *service.StatisticsService
	db        Pinger
	log       *zap.SugaredLogger
	pages     *template.Template
}

func New(countries *service.CountryService, stats *service.StatisticsService, db Pinger, log *zap.SugaredLogger) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		countries: countries,
		stats:     stats,
		db:        db,
		log:       log,
		pages:     pages,
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/countries", s.listCountries)
	mux.HandleFunc("POST /api/countries", s.createCountry)
	mux.HandleFunc("POST /api/countries/bulk", s.bulkCreateCountries)
	mux.HandleFunc("GET /api/countries/statistics", s.statistics)
	mux.HandleFunc("GET /api/countries/continents", s.listContinents)
	mux.HandleFunc("GET /api/countries/export", s.exportCountries)
	mux.HandleFunc("GET /api/countries/{id}", s.getCountry)
	mux.HandleFunc("PUT /api/countries/{id}", s.updateCountry)
	mux.HandleFunc("DELETE /api/countries/{id}", s.deleteCountry)
	mux.HandleFunc("GET /api/countries/name/{name}", s.getCountryByName)
	mux.HandleFunc("GET /api/countries/continent/{continent}", s.listByContinent)
	mux.HandleFunc("GET /api/countries/search/name", s.searchByName)
	mux.HandleFunc("GET /api/countries/search/continent", s.searchByContinent)
	mux.HandleFunc("GET /api/countries/population/greater-than/{population}", s.populationGreaterThan)
	mux.HandleFunc("GET /healthz", s.health)

	mux.HandleFunc("GET /{$}", s.indexPage)
	mux.HandleFunc("GET /countries", s.countriesPage)
	mux.HandleFunc("GET /add-country", s.addCountryPage)
	mux.HandleFunc("POST /add-country", s.submitCountry)
	mux.HandleFunc("GET /statistics", s.statisticsPage)

	var h http.Handler = mux
	h = cors(h)
	h = s.accessLog(h)
	h = s.recoverer(h)
	h = requestID(h)
	return gzhttp.GzipHandler(h)
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
