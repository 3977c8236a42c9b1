package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/model"
	"github.com/iliyamo/tour-reservation/internal/service"
	"github.com/iliyamo/tour-reservation/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts  *service.AccountService
	JWTSecret string
}

func NewAuthHandler(accounts *service.AccountService, jwtSecret string) *AuthHandler {
	return &AuthHandler{Accounts: accounts, JWTSecret: jwtSecret}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func sessionResp(s service.Session) authResp {
	return authResp{
		User:    userPart{ID: s.User.ID, Username: s.User.Username},
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp}, // raw back to client
	}
}

func (r credentialsReq) check() error {
	if strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return fmt.Errorf("%w: username/password required", model.ErrValidation)
	}
	return nil
}

// Register creates the user with an empty wallet and returns tokens
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.check(); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResp(s))
}

// Login verifies the password and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.check(); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Accounts.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// Refresh revokes the presented refresh token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh_token required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// Logout revokes the refresh token in the body.  Without one, a valid
// bearer access token logs the user out of every session.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refresh := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := requestContext(c)
	defer cancel()

	if refresh != "" {
		if err := h.Accounts.Logout(ctx, refresh); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}

	raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if ok {
		if uid, err := utils.ParseAccessToken(h.JWTSecret, strings.TrimSpace(raw)); err == nil {
			if err := h.Accounts.LogoutAll(ctx, uid); err != nil {
				return err
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
	return fmt.Errorf("%w: provide Authorization header or refresh_token", model.ErrValidation)
}
