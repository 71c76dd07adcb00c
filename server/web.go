package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"countries/models"
	"countries/models/request"
	"countries/service"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

func parsePages() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"population": formatPopulation,
		"area":       formatArea,
		"comma":      humanize.Comma,
	}).ParseFS(templateFS, "templates/*.html")
}

type pageData struct {
	Title                string
	TotalCountries       int64
	Continents           []string
	Countries            []models.Country
	CountriesByContinent []models.ContinentCount
	Form                 countryForm
	Errors               []string
}

type countryForm struct {
	Name       string
	Continent  string
	Population string
	Capital    string
	Area       string
	Currency   string
	Language   string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, page, data); err != nil {
		s.log.Errorw("error rendering page", "page", page, "error", err, "requestId", requestIDFrom(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Errorw("error loading page", "path", r.URL.Path, "error", err, "requestId", requestIDFrom(r.Context()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", pageData{
		Title:          "Countries",
		TotalCountries: overview.TotalCountries,
		Continents:     overview.Continents,
	})
}

func (s *Server) countriesPage(w http.ResponseWriter, r *http.Request) {
	countries, err := s.countries.ListAll(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	continents, err := s.countries.ListDistinctContinents(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "countries.html", pageData{
		Title:      "All countries",
		Countries:  countries,
		Continents: continents,
	})
}

func (s *Server) addCountryPage(w http.ResponseWriter, r *http.Request) {
	s.renderAddCountry(w, r, http.StatusOK, countryForm{}, nil)
}

func (s *Server) renderAddCountry(w http.ResponseWriter, r *http.Request, status int, form countryForm, problems []string) {
	continents, err := s.countries.ListDistinctContinents(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, status, "add-country.html", pageData{
		Title:      "Add country",
		Continents: continents,
		Form:       form,
		Errors:     problems,
	})
}

// submitCountry handles the add-country form and redirects to the list on success.
func (s *Server) submitCountry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderAddCountry(w, r, http.StatusBadRequest, countryForm{}, []string{"Invalid form submission"})
		return
	}

	form := countryForm{
		Name:       strings.TrimSpace(r.PostForm.Get("name")),
		Continent:  strings.TrimSpace(r.PostForm.Get("continent")),
		Population: strings.TrimSpace(r.PostForm.Get("population")),
		Capital:    strings.TrimSpace(r.PostForm.Get("capital")),
		Area:       strings.TrimSpace(r.PostForm.Get("area")),
		Currency:   strings.TrimSpace(r.PostForm.Get("currency")),
		Language:   strings.TrimSpace(r.PostForm.Get("language")),
	}

	req, problems := form.toRequest()
	if len(problems) > 0 {
		s.renderAddCountry(w, r, http.StatusBadRequest, form, problems)
		return
	}

	_, err := s.countries.Create(r.Context(), req)
	var verr *service.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/countries", http.StatusSeeOther)
	case errors.As(err, &verr):
		s.renderAddCountry(w, r, http.StatusBadRequest, form, verr.Problems())
	case errors.Is(err, service.ErrConflict):
		s.renderAddCountry(w, r, http.StatusBadRequest, form, []string{alreadyExists(req.Name)})
	default:
		s.pageError(w, r, err)
	}
}

func (f countryForm) toRequest() (request.CountryRequest, []string) {
	var problems []string
	req := request.CountryRequest{
		Name:      f.Name,
		Continent: f.Continent,
		Capital:   optional(f.Capital),
		Currency:  optional(f.Currency),
		Language:  optional(f.Language),
	}
	if f.Population != "" {
		n, err := strconv.ParseInt(f.Population, 10, 64)
		if err != nil {
			problems = append(problems, "Population must be a whole number")
		} else {
			req.Population = &n
		}
	}
	if f.Area != "" {
		a, err := strconv.ParseFloat(f.Area, 64)
		if err != nil {
			problems = append(problems, "Area must be a number")
		} else {
			req.Area = &a
		}
	}
	return req, problems
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) statisticsPage(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Statistics(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "statistics.html", pageData{
		Title:                "Statistics",
		TotalCountries:       stats.TotalCountries,
		Continents:           stats.Continents,
		CountriesByContinent: stats.CountriesByContinent,
	})
}

func formatPopulation(p *int64) string {
	if p == nil {
		return ""
	}
	return humanize.Comma(*p)
}

func formatArea(p *float64) string {
	if p == nil {
		return ""
	}
	return humanize.CommafWithDigits(*p, 1)
}
