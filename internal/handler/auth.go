package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/moviekiosk/film-rental/internal/config"
    "github.com/moviekiosk/film-rental/internal/repository"
    "github.com/moviekiosk/film-rental/internal/utils"
)

// RoleStaff is the only role issued by this service; staff accounts are
// provisioned out-of-band and there is no self-registration.
const RoleStaff = "STAFF"

// AuthHandler bundles dependencies for staff auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Staff  *repository.StaffRepo
    Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, s *repository.StaffRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Staff: s, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type staffPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Name  string `json:"name"`
}
type authResp struct {
    Staff   staffPart `json:"staff"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// Login verifies staff credentials and returns an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    s, err := h.Staff.GetByEmail(ctx, req.Email)
    if err == sql.ErrNoRows || (err == nil && !utils.VerifyPassword(s.PasswordHash, req.Password)) {
        // Same response for unknown email and wrong password.
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !s.Active {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
    }

    return h.issueTokens(c, ctx, s.ID, s.Email, s.FirstName+" "+s.LastName)
}

// Refresh exchanges a valid refresh token for a new token pair, rotating the
// refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    hash := utils.HashRefreshRaw(req.RefreshToken)
    staffID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err == sql.ErrNoRows {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    s, err := h.Staff.GetByID(ctx, staffID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return h.issueTokens(c, ctx, s.ID, s.Email, s.FirstName+" "+s.LastName)
}

// Logout revokes the presented refresh token.  Always 204 on well-formed
// input; revoking an unknown token is a no-op.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated staff account.
func (h *AuthHandler) Me(c echo.Context) error {
    staffID, err := getStaffID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    s, err := h.Staff.GetByID(ctx, staffID)
    if err == sql.ErrNoRows {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, staffPart{ID: s.ID, Email: s.Email, Name: s.FirstName + " " + s.LastName})
}

// ChangePassword lets an authenticated staff member rotate their own
// password.  The old password is re-verified so a stolen access token alone
// is not enough to lock the owner out.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    var req struct {
        OldPassword string `json:"old_password"`
        NewPassword string `json:"new_password"`
    }
    if err := c.Bind(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "old_password and new_password required"})
    }
    if len(req.NewPassword) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password too short"})
    }

    staffID, err := getStaffID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    s, err := h.Staff.GetByID(ctx, staffID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !utils.VerifyPassword(s.PasswordHash, req.OldPassword) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hash password"})
    }
    if err := h.Staff.UpdatePassword(ctx, staffID, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) issueTokens(c echo.Context, ctx context.Context, staffID uint64, email, name string) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, staffID, RoleStaff, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
    }
    if err := h.Tokens.StoreRefresh(ctx, staffID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, authResp{
        Staff:   staffPart{ID: staffID, Email: email, Name: name},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}
