package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/moviekiosk/film-rental/internal/queue"
    "github.com/moviekiosk/film-rental/internal/repository"
    "github.com/moviekiosk/film-rental/internal/service"
)

// RentalHandler exposes the rental lifecycle over HTTP: renting a copy,
// returning it, and checking availability.  The mutating endpoints sit
// behind staff authentication; the concurrency guarantees live in the
// service and repository layers, the handler only translates errors to
// status codes.
type RentalHandler struct {
    Rentals *service.RentalService
}

// NewRentalHandler constructs a RentalHandler.  The service must be non-nil.
func NewRentalHandler(rentals *service.RentalService) *RentalHandler {
    if rentals == nil {
        panic("nil service passed to NewRentalHandler")
    }
    return &RentalHandler{Rentals: rentals}
}

type rentalReq struct {
    CustomerID uint64 `json:"customer_id"`
    FilmID     uint64 `json:"film_id"`
}

// Rent handles POST /v1/rentals.  On success it returns 201 Created with the
// allocated unit id and rental id.  A film with every copy out yields 409 so
// the desk can tell "no copies available" apart from a bad id.
func (h *RentalHandler) Rent(c echo.Context) error {
    var req rentalReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.CustomerID == 0 || req.FilmID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and film_id are required"})
    }

    res, err := h.Rentals.Rent(c.Request().Context(), req.CustomerID, req.FilmID)
    switch {
    case err == nil:
    case errors.Is(err, repository.ErrFilmNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
    case errors.Is(err, repository.ErrCustomerNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
    case errors.Is(err, repository.ErrNoAvailableCopy):
        return c.JSON(http.StatusConflict, echo.Map{"error": "no available copy"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    // Best effort: a broker outage must not fail a committed rental.
    _ = queue.PublishRentalCreated(c.Request().Context(), queue.RentalCreatedEvent{
        RentalID:   res.RentalID,
        CustomerID: req.CustomerID,
        FilmID:     req.FilmID,
        UnitID:     res.UnitID,
        RentedAt:   res.RentedAt.Format(time.RFC3339),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "rental_id": res.RentalID,
        "unit_id":   res.UnitID,
        "rented_at": res.RentedAt.Format(time.RFC3339),
    })
}

// Return handles POST /v1/returns.  It closes the customer's oldest open
// rental for the film and returns the closing timestamp.
func (h *RentalHandler) Return(c echo.Context) error {
    var req rentalReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.CustomerID == 0 || req.FilmID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and film_id are required"})
    }

    res, err := h.Rentals.Return(c.Request().Context(), req.CustomerID, req.FilmID)
    switch {
    case err == nil:
    case errors.Is(err, repository.ErrNoOpenRental):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no open rental for this customer and film"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    _ = queue.PublishRentalReturned(c.Request().Context(), queue.RentalReturnedEvent{
        RentalID:   res.RentalID,
        CustomerID: req.CustomerID,
        FilmID:     req.FilmID,
        ReturnedAt: res.ReturnedAt.Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{
        "rental_id":   res.RentalID,
        "return_time": res.ReturnedAt.Format(time.RFC3339),
    })
}

// OpenRentals handles GET /v1/customers/:id/rentals: the customer's open
// rentals, oldest first.  Staff-only, so the desk can review what is still
// out before accepting a return.
func (h *RentalHandler) OpenRentals(c echo.Context) error {
    customerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }

    rentals, err := h.Rentals.OpenRentals(c.Request().Context(), customerID)
    switch {
    case err == nil:
    case errors.Is(err, repository.ErrCustomerNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    out := make([]echo.Map, 0, len(rentals))
    for _, r := range rentals {
        out = append(out, echo.Map{
            "rental_id": r.ID,
            "unit_id":   r.InventoryID,
            "rented_at": r.RentalDate.Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, out)
}

// Availability handles GET /v1/films/:id/availability.  Public and
// read-only: the count comes from the same transactional substrate as Rent,
// so a "free" answer can only be invalidated by a real allocation.
func (h *RentalHandler) Availability(c echo.Context) error {
    filmID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || filmID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
    }

    n, err := h.Rentals.Availability(c.Request().Context(), filmID)
    switch {
    case err == nil:
    case errors.Is(err, repository.ErrFilmNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "film not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "film_id":   filmID,
        "available": n > 0,
        "count":     n,
    })
}
