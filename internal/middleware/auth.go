package middleware

import (
	"context"
	"strings"

	"github.com/spinvault/backend/internal/model"
	"github.com/spinvault/backend/pkg/authenticator"
	"github.com/spinvault/backend/pkg/errorx"
	"github.com/spinvault/backend/pkg/router"
	"github.com/spinvault/backend/pkg/xcontext"
)

// MustAuthenticate resolves the bearer token into a player id and rejects
// requests without a valid one.
func MustAuthenticate(tokenEngine authenticator.TokenEngine[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		playerID, err := verify(ctx, tokenEngine)
		if err != nil {
			return ctx, err
		}

		return xcontext.WithRequestUserID(ctx, playerID), nil
	}
}

// Authenticate is the optional variant, anonymous requests pass through
// without a request user id.
func Authenticate(tokenEngine authenticator.TokenEngine[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		playerID, err := verify(ctx, tokenEngine)
		if err != nil {
			return ctx, nil
		}

		return xcontext.WithRequestUserID(ctx, playerID), nil
	}
}

func verify(ctx context.Context, tokenEngine authenticator.TokenEngine[model.AccessToken]) (string, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return "", errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	token := ""
	authorization := req.Header.Get("Authorization")
	if auth, value, found := strings.Cut(authorization, " "); found && auth == "Bearer" {
		token = value
	}

	if token == "" {
		cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
		if err == nil {
			token = cookie.Value
		}
	}

	if token == "" {
		return "", errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	info, err := tokenEngine.Verify(token)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
		return "", errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	return info.ID, nil
}
