package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	r *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = xcontext.WithConfigs(ctx, r.cfg)
		ctx = xcontext.WithLogger(ctx, r.logger)
		ctx = xcontext.WithDB(ctx, r.db)
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)

		var req Request
		var bindErr error
		switch method {
		case http.MethodGet:
			bindErr = c.ShouldBindQuery(&req)
		case http.MethodPost:
			// Bodyless POSTs bind to the zero request.
			if c.Request.ContentLength != 0 {
				bindErr = c.ShouldBindJSON(&req)
			}
		}
		if bindErr != nil {
			r.logger.Warnf("cannot bind the request: %v", bindErr)
			err := errorx.New(errorx.BadRequest, "Invalid request")
			c.JSON(httpStatus(err), newErrorResponse(err))
			runClosers(r, ctx, err)
			return
		}

		var err error
		for _, middleware := range r.befores {
			ctx, err = middleware(ctx)
			if err != nil {
				c.JSON(httpStatus(err), newErrorResponse(err))
				runClosers(r, ctx, err)
				return
			}
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			c.JSON(httpStatus(err), newErrorResponse(err))
		} else {
			c.JSON(http.StatusOK, newResponse(resp))
		}

		runClosers(r, ctx, err)
	}
}

func runClosers(r *Router, ctx context.Context, err error) {
	for _, closer := range r.closers {
		closer(ctx, err)
	}
}
