package handler

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"
)

var errNoStaffID = errors.New("no staff id in context")

// getStaffID reads the staff id the JWT middleware stored in the request
// context.  The claim arrives as float64 after JSON decoding but may also be
// a string or integer depending on how the token was minted.
func getStaffID(c echo.Context) (uint64, error) {
    switch v := c.Get("staff_id").(type) {
    case float64:
        if v < 1 {
            return 0, errNoStaffID
        }
        return uint64(v), nil
    case uint64:
        return v, nil
    case int64:
        if v < 1 {
            return 0, errNoStaffID
        }
        return uint64(v), nil
    case string:
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil || id == 0 {
            return 0, errNoStaffID
        }
        return id, nil
    default:
        return 0, errNoStaffID
    }
}
