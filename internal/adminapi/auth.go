package adminapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/webserver"
)

const tokenTTL = 12 * time.Hour

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// registerAuthRoutes registers the operator login route
func registerAuthRoutes() {
	webserver.ApiPOST("/admin/login", login)
}

func login(c echo.Context) error {
	cfg := GetAppContext(c).Config()
	if !cfg.Web.AuthEnabled() {
		return fail(c, http.StatusBadRequest, "AUTH_DISABLED", "Admin authentication is not configured", nil)
	}
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return failWith(c, err, "login")
	}
	if !checkCredentials(cfg.Web, payload.Username, payload.Password) {
		zap.L().Warn("admin login rejected", zap.String("username", payload.Username),
			zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil)
	}

	token, expires, err := issueToken(cfg, payload.Username)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unable to issue token", err.Error())
	}
	zap.L().Info("admin login", zap.String("username", payload.Username))
	return ok(c, map[string]interface{}{
		"token":      token,
		"expires_at": expires,
	})
}

func checkCredentials(cfg config.WebConfig, username, password string) bool {
	if cfg.AdminPassword == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(cfg.AdminUsername)) != 1 {
		return false
	}
	if strings.HasPrefix(cfg.AdminPassword, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AdminPassword), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(cfg.AdminPassword)) == 1
}

func issueToken(cfg *config.AppConfig, username string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    cfg.System.Appid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Web.JwtSecret))
	return signed, expires, err
}
