package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spinvault/backend/config"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type echoRequest struct {
	Name string `json:"name" form:"name"`
}

type echoResponse struct {
	Name string `json:"name"`
}

func newTestRouter(t *testing.T) *Router {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	return New(db, config.Configs{}, logger.NewLogger(logger.SILENCE))
}

func serve(r *Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func Test_Router_SuccessEnvelope(t *testing.T) {
	r := newTestRouter(t)
	POST(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Name: req.Name}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"abc"}`))
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int64 `json:"code"`
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Zero(t, resp.Code)
	require.Equal(t, "abc", resp.Data.Name)
}

func Test_Router_ErrorStatusMapping(t *testing.T) {
	testcases := []struct {
		err    error
		status int
	}{
		{err: errorx.New(errorx.BadRequest, "bad"), status: http.StatusBadRequest},
		{err: errorx.New(errorx.Unauthenticated, "auth"), status: http.StatusUnauthorized},
		{err: errorx.New(errorx.NotFound, "missing"), status: http.StatusNotFound},
		{err: errorx.New(errorx.QuotaExceeded, "quota"), status: http.StatusConflict},
		{err: errorx.New(errorx.SignerUnavailable, "signer"), status: http.StatusServiceUnavailable},
		{err: errorx.Unknown, status: http.StatusInternalServerError},
	}

	for _, tc := range testcases {
		r := newTestRouter(t)
		handlerErr := tc.err
		GET(r, "/fail", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
			return nil, handlerErr
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))
		require.Equal(t, tc.status, w.Code, "error %v", tc.err)

		var resp struct {
			Code  int64  `json:"code"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotZero(t, resp.Code)
		require.NotEmpty(t, resp.Error)
	}
}

func Test_Router_BeforeMiddlewareRejects(t *testing.T) {
	r := newTestRouter(t)

	branch := r.Branch()
	branch.Before(func(ctx context.Context) (context.Context, error) {
		return ctx, errorx.New(errorx.Unauthenticated, "Not authenticated")
	})

	called := false
	GET(branch, "/protected", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		called = true
		return &echoResponse{}, nil
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, called)
}

func Test_Router_BranchIsolatesMiddleware(t *testing.T) {
	r := newTestRouter(t)

	branch := r.Branch()
	branch.Before(func(ctx context.Context) (context.Context, error) {
		return ctx, errorx.New(errorx.Unauthenticated, "Not authenticated")
	})
	GET(branch, "/protected", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{}, nil
	})

	// The original router keeps its empty chain.
	GET(r, "/open", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Name: req.Name}, nil
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/open?name=x", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func Test_Router_BodylessPostBindsZeroRequest(t *testing.T) {
	r := newTestRouter(t)
	POST(r, "/spin", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Name: req.Name}, nil
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/spin", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
