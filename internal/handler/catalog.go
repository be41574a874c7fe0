package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/moviekiosk/film-rental/internal/repository"
)

// CatalogHandler serves the public read-only surface: film browse/search and
// the landing page reports.  These endpoints never mutate state and sit
// behind the response cache when Redis is configured.
type CatalogHandler struct {
    Films   *repository.FilmRepo
    Reports *repository.ReportRepo
}

// NewCatalogHandler constructs a CatalogHandler.  Both repositories must be non-nil.
func NewCatalogHandler(films *repository.FilmRepo, reports *repository.ReportRepo) *CatalogHandler {
    if films == nil || reports == nil {
        panic("nil repository passed to NewCatalogHandler")
    }
    return &CatalogHandler{Films: films, Reports: reports}
}

// SearchFilms handles GET /v1/films?title=&limit=.
func (h *CatalogHandler) SearchFilms(c echo.Context) error {
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        if n, err := strconv.Atoi(s); err == nil {
            limit = n
        }
    }
    films, err := h.Films.Search(c.Request().Context(), c.QueryParam("title"), limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]echo.Map, 0, len(films))
    for _, f := range films {
        m := echo.Map{"film_id": f.ID, "title": f.Title}
        if f.Description != nil {
            m["description"] = *f.Description
        }
        if f.ReleaseYear != nil {
            m["release_year"] = *f.ReleaseYear
        }
        out = append(out, m)
    }
    return c.JSON(http.StatusOK, out)
}

// GetFilm handles GET /v1/films/:id.
func (h *CatalogHandler) GetFilm(c echo.Context) error {
    filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || filmID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
    }
    f, err := h.Films.GetByID(c.Request().Context(), filmID)
    if errors.Is(err, repository.ErrFilmNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    m := echo.Map{"film_id": f.ID, "title": f.Title}
    if f.Description != nil {
        m["description"] = *f.Description
    }
    if f.ReleaseYear != nil {
        m["release_year"] = *f.ReleaseYear
    }
    return c.JSON(http.StatusOK, m)
}

// TopFilms handles GET /v1/reports/top-films: the five most rented films of
// all time with their category.
func (h *CatalogHandler) TopFilms(c echo.Context) error {
    films, err := h.Reports.TopRentedFilms(c.Request().Context(), 5)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, films)
}

// TopActors handles GET /v1/reports/top-actors: the five actors featured in
// the most films carried by the store.
func (h *CatalogHandler) TopActors(c echo.Context) error {
    actors, err := h.Reports.TopActors(c.Request().Context(), 5)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, actors)
}
