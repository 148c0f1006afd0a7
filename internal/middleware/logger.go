package middleware

import (
	"context"
	"errors"

	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/router"
	"github.com/spinvault/backend/pkg/xcontext"
)

// Logger logs every finished request with its resolved error code.
func Logger() router.CloserFunc {
	return func(ctx context.Context, err error) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil {
			return
		}

		if err == nil {
			xcontext.Logger(ctx).Infof("%s | %s | ok", req.Method, req.URL.Path)
			return
		}

		errx := errorx.Error{}
		if !errors.As(err, &errx) {
			errx = errorx.Unknown
		}

		xcontext.Logger(ctx).Infof("%s | %s | %d | %s",
			req.Method, req.URL.Path, errx.Code, errx.Message)
	}
}
