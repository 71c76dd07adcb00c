package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"countries/export"
	"countries/models"
	"countries/models/request"
)

const maxBodyBytes = 1 << 20

func (s *Server) listCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.countries.ListAll(r.Context())
	s.writeList(w, r, countries, err)
}

func (s *Server) getCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	country, err := s.countries.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: notFoundByID(id)})
		return
	}
	s.writeJSON(w, http.StatusOK, country)
}

func (s *Server) getCountryByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	country, err := s.countries.GetByName(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: fmt.Sprintf("Country with name '%s' not found", name)})
		return
	}
	s.writeJSON(w, http.StatusOK, country)
}

func (s *Server) listByContinent(w http.ResponseWriter, r *http.Request) {
	countries, err := s.countries.ListByContinent(r.Context(), r.PathValue("continent"))
	s.writeList(w, r, countries, err)
}

func (s *Server) searchByName(w http.ResponseWriter, r *http.Request) {
	fragment, ok := s.queryParam(w, r, "name")
	if !ok {
		return
	}
	countries, err := s.countries.SearchByName(r.Context(), fragment)
	s.writeList(w, r, countries, err)
}

func (s *Server) searchByContinent(w http.ResponseWriter, r *http.Request) {
	fragment, ok := s.queryParam(w, r, "continent")
	if !ok {
		return
	}
	countries, err := s.countries.SearchByContinent(r.Context(), fragment)
	s.writeList(w, r, countries, err)
}

func (s *Server) populationGreaterThan(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseInt(r.PathValue("population"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "population must be an integer")
		return
	}
	countries, err := s.countries.ListWithPopulationGreaterThan(r.Context(), threshold)
	s.writeList(w, r, countries, err)
}

func (s *Server) listContinents(w http.ResponseWriter, r *http.Request) {
	continents, err := s.countries.ListDistinctContinents(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{})
		return
	}
	s.writeJSON(w, http.StatusOK, continents)
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Statistics(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{})
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) createCountry(w http.ResponseWriter, r *http.Request) {
	var req request.CountryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	country, err := s.countries.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{conflict: alreadyExists(req.Name), conflictStatus: http.StatusBadRequest})
		return
	}
	s.writeJSON(w, http.StatusCreated, country)
}

func (s *Server) updateCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req request.CountryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	country, err := s.countries.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: notFoundByID(id), conflict: alreadyExists(req.Name)})
		return
	}
	s.writeJSON(w, http.StatusOK, country)
}

func (s *Server) deleteCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.countries.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: notFoundByID(id)})
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Country deleted successfully"})
}

type bulkResponse struct {
	Message   string           `json:"message"`
	Countries []models.Country `json:"countries"`
}

func (s *Server) bulkCreateCountries(w http.ResponseWriter, r *http.Request) {
	var reqs []request.CountryRequest
	if !s.decodeBody(w, r, &reqs) {
		return
	}
	inserted, err := s.countries.BulkCreate(r.Context(), reqs)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{})
		return
	}
	s.writeJSON(w, http.StatusCreated, bulkResponse{
		Message:   fmt.Sprintf("Created %d countries", len(inserted)),
		Countries: inserted,
	})
}

func (s *Server) exportCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.countries.ListAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{})
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, countries); err != nil {
		s.writeServiceError(w, r, err, errorText{})
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="countries.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type healthResponse struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"openConnections,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.Warnw("database ping failed", "error", err)
		s.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	resp := healthResponse{Status: "ok"}
	if db, ok := s.db.(statsReporter); ok {
		resp.OpenConnections = db.Stats().OpenConnections
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeList(w http.ResponseWriter, r *http.Request, countries []models.Country, err error) {
	if err != nil {
		s.writeServiceError(w, r, err, errorText{})
		return
	}
	s.writeJSON(w, http.StatusOK, countries)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func (s *Server) queryParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	q := r.URL.Query()
	if !q.Has(key) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Required parameter '%s' is missing", key))
		return "", false
	}
	return q.Get(key), true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}

func notFoundByID(id uint) string {
	return fmt.Sprintf("Country with ID %d not found", id)
}

func alreadyExists(name string) string {
	return fmt.Sprintf("Country with name '%s' already exists", name)
}
