package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/moviekiosk/film-rental/internal/repository"
    "github.com/moviekiosk/film-rental/internal/service"
)

// CustomerHandler exposes the customer directory: create, update, delete and
// the read-only listing.  Mutations require staff authentication.
type CustomerHandler struct {
    Customers *service.CustomerService
    Directory *repository.CustomerRepo
}

// NewCustomerHandler constructs a CustomerHandler.  Both dependencies must be non-nil.
func NewCustomerHandler(customers *service.CustomerService, directory *repository.CustomerRepo) *CustomerHandler {
    if customers == nil || directory == nil {
        panic("nil dependency passed to NewCustomerHandler")
    }
    return &CustomerHandler{Customers: customers, Directory: directory}
}

// Add handles POST /v1/customers.
func (h *CustomerHandler) Add(c echo.Context) error {
    var in service.CustomerInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    id, err := h.Customers.Add(c.Request().Context(), in)
    if err != nil {
        return customerError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"customer_id": id})
}

// Update handles PUT /v1/customers/:id.
func (h *CustomerHandler) Update(c echo.Context) error {
    customerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }
    var in service.CustomerInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }

    if err := h.Customers.Update(c.Request().Context(), customerID, in); err != nil {
        return customerError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"customer_id": customerID})
}

// Delete handles DELETE /v1/customers/:id.  The service cascades payments
// and rentals before removing the customer row.
func (h *CustomerHandler) Delete(c echo.Context) error {
    customerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }

    if err := h.Customers.Delete(c.Request().Context(), customerID); err != nil {
        return customerError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// List handles GET /v1/customers with an optional ?limit= parameter.
func (h *CustomerHandler) List(c echo.Context) error {
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        if n, err := strconv.Atoi(s); err == nil {
            limit = n
        }
    }
    customers, err := h.Directory.List(c.Request().Context(), limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]echo.Map, 0, len(customers))
    for _, cu := range customers {
        out = append(out, echo.Map{
            "customer_id": cu.ID,
            "first_name":  cu.FirstName,
            "last_name":   cu.LastName,
            "email":       cu.Email,
            "active":      cu.Active,
        })
    }
    return c.JSON(http.StatusOK, out)
}

// customerError maps directory errors onto HTTP responses.
func customerError(c echo.Context, err error) error {
    var ve *service.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
    case errors.Is(err, repository.ErrDuplicateEmail):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
    case errors.Is(err, repository.ErrCustomerNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
