// Package auth is the request gate: it composes token validation (stateless)
// with the revocation registry (shared state) and the per-route capability
// requirements. Handlers behind the gate read claims from the echo context.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/astroev/stores-api/internal/logging"
	"github.com/astroev/stores-api/internal/revocation"
	"github.com/astroev/stores-api/internal/tokens"
)

const claimsContextKey = "authClaims"

type Gate struct {
	Tokens   *tokens.Service
	Registry revocation.Registry
}

func ClaimsFrom(c echo.Context) *tokens.Claims {
	claims, _ := c.Get(claimsContextKey).(*tokens.Claims)
	return claims
}

func reject(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": code, "message": message})
}

// RequireAccess admits requests carrying a valid, unrevoked access token.
func (g *Gate) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, errResp := g.check(c, tokens.TypeAccess)
		if errResp != nil {
			return errResp
		}
		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

// RequireFresh additionally demands a token minted directly from a password
// login, not one derived from a refresh exchange.
func (g *Gate) RequireFresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, errResp := g.check(c, tokens.TypeAccess)
		if errResp != nil {
			return errResp
		}
		if err := claims.RequireFresh(); err != nil {
			return reject(c, http.StatusUnauthorized, "fresh_token_required", "Token is not fresh.")
		}
		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, errResp := g.check(c, tokens.TypeAccess)
		if errResp != nil {
			return errResp
		}
		if !claims.IsAdmin {
			return reject(c, http.StatusForbidden, "admin_required", "Admin privilege required.")
		}
		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

// RequireRefresh admits only refresh-type tokens; the refresh handler itself
// revokes the presented jti so each refresh token is single-use.
func (g *Gate) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, errResp := g.check(c, tokens.TypeRefresh)
		if errResp != nil {
			return errResp
		}
		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

func (g *Gate) check(c echo.Context, wantTyp string) (*tokens.Claims, error) {
	raw, ok := bearerToken(c)
	if !ok {
		return nil, reject(c, http.StatusUnauthorized, "authorization_required", "Request does not contain an access token.")
	}

	claims, err := g.Tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, tokens.ErrExpired) {
			return nil, reject(c, http.StatusUnauthorized, "token_expired", "The token has expired.")
		}
		return nil, reject(c, http.StatusUnauthorized, "invalid_token", "Signature verification failed.")
	}

	revoked, err := g.Registry.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		// Fail closed: an unreachable registry must never grant access.
		logging.FromContext(c.Request().Context()).Error("revocation lookup failed", "jti", claims.ID, "error", err)
		revoked = true
	}
	if revoked {
		return nil, reject(c, http.StatusUnauthorized, "token_revoked", "Token has been revoked.")
	}

	if claims.Typ != wantTyp {
		return nil, reject(c, http.StatusUnauthorized, "invalid_token", "Wrong token type for this endpoint.")
	}

	return claims, nil
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
