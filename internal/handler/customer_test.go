package handler

import (
    "database/sql"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/moviekiosk/film-rental/internal/repository"
    "github.com/moviekiosk/film-rental/internal/service"
)

// Every directory error maps to exactly one status; driver errors collapse
// to a generic 500 so internals never leak to clients.
func TestCustomerErrorMapping(t *testing.T) {
    cases := []struct {
        name       string
        err        error
        wantStatus int
        wantError  string
    }{
        {"validation", &service.ValidationError{Field: "email"}, http.StatusBadRequest, "field email is required"},
        {"duplicate email", repository.ErrDuplicateEmail, http.StatusConflict, "email already in use"},
        {"not found", repository.ErrCustomerNotFound, http.StatusNotFound, "customer not found"},
        {"driver error", sql.ErrConnDone, http.StatusInternalServerError, "database error"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            e := echo.New()
            req := httptest.NewRequest(http.MethodPost, "/v1/customers", nil)
            rec := httptest.NewRecorder()
            c := e.NewContext(req, rec)

            require.NoError(t, customerError(c, tc.err))
            assert.Equal(t, tc.wantStatus, rec.Code)

            var body map[string]interface{}
            require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
            assert.Equal(t, tc.wantError, body["error"])
        })
    }
}

func TestCustomerErrorValidationNamesField(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/customers", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    require.NoError(t, customerError(c, &service.ValidationError{Field: "phone"}))

    var body map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, "phone", body["field"])
}
