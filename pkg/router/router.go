package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinvault/backend/config"
	"github.com/spinvault/backend/pkg/logger"
	"gorm.io/gorm"
)

// HandlerFunc handles a single request after it has been bound from the
// query string or JSON body.
type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can enrich the context or stop
// the request by returning an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler with the error it returned (nil on
// success).
type CloserFunc func(ctx context.Context, err error)

type Router struct {
	Inner gin.IRouter

	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB

	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		Inner:  engine,
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
}

// Branch returns a router sharing the same underlying engine but with an
// independent middleware and closer chain.
func (r *Router) Branch() *Router {
	clone := &Router{
		Inner:  r.Inner,
		cfg:    r.cfg,
		logger: r.logger,
		db:     r.db,
	}

	clone.befores = append(clone.befores, r.befores...)
	clone.closers = append(clone.closers, r.closers...)
	return clone
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}
