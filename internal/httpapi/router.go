// Package httpapi exposes the classifieds operations as a JSON API on gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"classifieds/internal/auth"
	"classifieds/internal/logger"
	"classifieds/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	Services     *service.Services
	Gate         *auth.Gate
	Health       Pinger
	CookieName   string
	CookieSecure bool
	// SessionTTL is the cookie max-age; it should match the token lifetime.
	SessionTTL time.Duration
}

type api struct {
	svc    *service.Services
	health Pinger
	cookie cookieSettings
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(opts Options) *gin.Engine {
	if opts.Services == nil || opts.Gate == nil {
		panic("httpapi: services and gate are required")
	}
	if opts.CookieName == "" {
		opts.CookieName = "ref_access_token"
	}
	a := &api{
		svc:    opts.Services,
		health: opts.Health,
		cookie: cookieSettings{name: opts.CookieName, secure: opts.CookieSecure, maxAge: opts.SessionTTL},
	}

	engine := gin.New()
	engine.Use(
		requestIDMiddleware(),
		accessLogMiddleware(),
		recoveryMiddleware(),
		gzip.Gzip(gzip.DefaultCompression),
		sessionMiddleware(opts.Gate, opts.CookieName),
	)
	engine.NoRoute(func(c *gin.Context) {
		message(c, http.StatusNotFound, "not found")
	})

	engine.GET("/healthz", a.healthz)

	user := engine.Group("/user")
	{
		user.POST("/register", a.register)
		user.POST("/login", a.login)
		user.GET("/logout", a.logout)
		user.GET("/me", a.me)
		user.POST("/get", a.getUser)
		user.POST("/all", a.listUsers)
	}

	adv := engine.Group("/adv")
	{
		adv.POST("/all", a.listAdverts)
		adv.POST("/category", a.listAdvertsByCategory)
		adv.POST("/user", a.listAdvertsByUser)
		adv.POST("/get", a.getAdvert)
		adv.POST("/create", a.createAdvert)
		adv.DELETE("/delete", a.deleteAdvert)
		adv.POST("/comment", a.createComment)
		adv.POST("/comments", a.listComments)
		adv.POST("/report", a.createReport)
	}

	category := engine.Group("/category")
	{
		category.POST("/all", a.listCategories)
		category.POST("/get", a.getCategory)
	}

	admin := engine.Group("/admin")
	{
		admin.POST("/changestate", a.changeState)
		admin.DELETE("/delete", a.adminDelete)
		admin.POST("/category", a.createCategory)
		admin.POST("/move", a.moveAdvert)
		admin.POST("/reports", a.listReports)
		admin.POST("/report", a.getReport)
		admin.POST("/allowlist", a.addAllowlist)
		admin.DELETE("/allowlist", a.removeAllowlist)
		admin.POST("/allowlist/all", a.listAllowlist)
	}

	return engine
}

// Start serves handler on addr and returns a shutdown function that drains in-flight
// requests until ctx expires.
func Start(addr string, handler http.Handler) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":8000"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server stopped: %v", err)
		}
	}()
	logger.Infof("HTTP API listening on %s", lis.Addr())
	return srv.Shutdown, nil
}
