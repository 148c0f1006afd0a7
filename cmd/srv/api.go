package main

import (
	"fmt"
	"net/http"

	"github.com/spinvault/backend/internal/middleware"
	"github.com/spinvault/backend/pkg/router"
	"github.com/spinvault/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()
	s.loadPublisher()
	s.loadBlockchain()
	s.loadDomains()
	s.loadRouter()

	ctx := xcontext.WithConfigs(ct.Context, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	s.ethClient.Start(ctx)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	s.logger.Infof("Starting server on port %s", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.AddCloser(middleware.Logger())

	// Public API
	publicRouter := s.router.Branch()
	{
		router.POST(publicRouter, "/login", s.authDomain.Login)
		router.GET(publicRouter, "/getTokens", s.spinDomain.GetTokens)
	}

	// Optional authentication
	optionalAuthRouter := s.router.Branch()
	optionalAuthRouter.Before(middleware.Authenticate(s.tokenEngine))
	{
		router.GET(optionalAuthRouter, "/getPlayer", s.spinDomain.GetPlayer)
	}

	// These APIs need authentication with an access token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.MustAuthenticate(s.tokenEngine))
	{
		router.POST(authRouter, "/spin", s.spinDomain.Spin)
		router.GET(authRouter, "/getSpinHistory", s.spinDomain.GetSpinHistory)
		router.POST(authRouter, "/claim/signature", s.claimDomain.Signature)
		router.POST(authRouter, "/claim/batch-signature", s.claimDomain.BatchSignature)
		router.POST(authRouter, "/claim/reissue", s.claimDomain.Reissue)
	}
}
