// Package webserver hosts the echo instance and the route registration
// helpers used by the API packages.
package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

const (
	ApiPrefix   = "/api"
	AdminPrefix = "/admin"

	// AppContextKey holds the application context in every echo.Context.
	AppContextKey = "appctx"
	// UserContextKey holds the verified admin token.
	UserContextKey = "user"
)

// Server wraps the echo instance with the public and admin route groups
type Server struct {
	root  *echo.Echo
	api   *echo.Group
	admin *echo.Group
	cfg   config.WebConfig
}

var server *Server

type structValidator struct{}

func (structValidator) Validate(i interface{}) error {
	return domain.Validate(i)
}

// Init creates the server and makes it the target of the Api* and Admin*
// registration helpers. appCtx is exposed to handlers under AppContextKey.
func Init(cfg config.WebConfig, appCtx interface{}) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = structValidator{}
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	api := e.Group(ApiPrefix)
	var adminMiddleware []echo.MiddlewareFunc
	if cfg.AuthEnabled() {
		adminMiddleware = append(adminMiddleware, echojwt.WithConfig(echojwt.Config{
			SigningKey: []byte(cfg.JwtSecret),
			ContextKey: UserContextKey,
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"code": "UNAUTHORIZED",
					"msg":  "Missing or invalid admin token",
				})
			},
		}))
	} else {
		zap.L().Warn("web.jwt_secret is empty, admin routes are not protected")
	}
	admin := api.Group(AdminPrefix, adminMiddleware...)

	server = &Server{root: e, api: api, admin: admin, cfg: cfg}
	return server
}

// Echo returns the underlying echo instance of the current server.
func Echo() *echo.Echo {
	return server.root
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

func AdminGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.GET(path, h, m...)
}

func AdminPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.POST(path, h, m...)
}

func AdminPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.PUT(path, h, m...)
}

func AdminDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.DELETE(path, h, m...)
}

// Start serves until Shutdown is called.
func Start() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Host, server.cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	err := server.root.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func Shutdown(ctx context.Context) error {
	return server.root.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				zap.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := interface{}(err.Error())
	code := "INTERNAL_ERROR"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		msg = he.Message
		code = http.StatusText(status)
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("unhandled request error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	resp := map[string]interface{}{"code": code, "msg": msg}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		zap.L().Error("write error response", zap.Error(err))
	}
}

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second
