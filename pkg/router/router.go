package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invitetrack/backend/config"
	"github.com/invitetrack/backend/pkg/logger"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

type Router struct {
	Inner gin.IRouter

	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB
}

func New(db *gorm.DB, cfg config.Configs, l logger.Logger) *Router {
	return &Router{
		Inner:  gin.New(),
		cfg:    cfg,
		logger: l,
		db:     db,
	}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Branch() *Router {
	return &Router{
		Inner:  r.Inner.Group(""),
		cfg:    r.cfg,
		logger: r.logger,
		db:     r.db,
	}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}
