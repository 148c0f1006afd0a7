package main

import (
	"crypto/ecdsa"
	"net/http"

	"github.com/spinvault/backend/config"
	"github.com/spinvault/backend/internal/client"
	"github.com/spinvault/backend/internal/domain"
	"github.com/spinvault/backend/internal/domain/spinengine"
	"github.com/spinvault/backend/internal/model"
	"github.com/spinvault/backend/internal/repository"
	"github.com/spinvault/backend/pkg/authenticator"
	"github.com/spinvault/backend/pkg/kafka"
	"github.com/spinvault/backend/pkg/logger"
	"github.com/spinvault/backend/pkg/pubsub"
	"github.com/spinvault/backend/pkg/router"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	playerRepo     repository.PlayerRepository
	balanceRepo    repository.BalanceRepository
	spinRecordRepo repository.SpinRecordRepository
	tokenRepo      repository.TokenRepository
	claimRepo      repository.ClaimRepository

	tokenEngine authenticator.TokenEngine[model.AccessToken]
	publisher   pubsub.Publisher

	ethClient      client.EthClient
	vault          client.VaultCaller
	executor       *client.TransferExecutor
	claimSignerKey *ecdsa.PrivateKey

	authDomain  domain.AuthDomain
	spinDomain  domain.SpinDomain
	claimDomain domain.ClaimDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.logger = logger.NewLogger(level)
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.New(mysql.Config{
		DSN:                       s.configs.Database.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.playerRepo = repository.NewPlayerRepository()
	s.balanceRepo = repository.NewBalanceRepository()
	s.spinRecordRepo = repository.NewSpinRecordRepository()
	s.tokenRepo = repository.NewTokenRepository()
	s.claimRepo = repository.NewClaimRepository()
}

func (s *srv) loadPublisher() {
	if s.configs.Kafka.Addr == "" {
		s.publisher = pubsub.NewNoopPublisher()
		return
	}

	s.publisher = kafka.NewPublisher("spinvault-api", []string{s.configs.Kafka.Addr})
}

func (s *srv) loadBlockchain() {
	cfg := s.configs.Blockchain

	s.ethClient = client.NewEthClient(cfg)

	operatorKey, err := loadKey(cfg.OperatorKey)
	if err != nil {
		panic(err)
	}

	// Both custodial keys are parsed once here and live for the process.
	// An empty claim signer key disables claim signing.
	if cfg.ClaimSignerKey != "" {
		s.claimSignerKey, err = loadKey(cfg.ClaimSignerKey)
		if err != nil {
			panic(err)
		}
	}

	s.vault, err = client.NewVaultCaller(
		s.ethClient,
		common.HexToAddress(cfg.VaultAddress),
		cfg.ChainID,
		cfg.TransferGasLimit,
		operatorKey,
	)
	if err != nil {
		panic(err)
	}

	s.executor = client.NewTransferExecutor(
		s.ethClient,
		s.vault,
		client.DefaultRetryPolicy(),
		cfg.ReceiptPollInterval,
		cfg.ReceiptTimeout,
	)
}

func (s *srv) loadDomains() {
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](
		s.configs.Auth.TokenSecret, s.configs.Auth.AccessToken)

	engineCfg := spinengine.DefaultConfig()
	engineCfg.Beginner.Enabled = s.configs.Spin.BeginnerLuckEnabled
	engineCfg.AmountMin = uint64(s.configs.Spin.AmountMin)
	engineCfg.AmountMax = uint64(s.configs.Spin.AmountMax)

	// BEGINNER_SPINS can shorten the boosted schedule, spins past it use
	// the standard table.
	if n := s.configs.Spin.BeginnerSpins; n >= 0 && n < len(engineCfg.Beginner.Tables) {
		engineCfg.Beginner.Tables = engineCfg.Beginner.Tables[:n]
	}

	engine, err := spinengine.NewEngine(engineCfg, spinengine.NewCryptoSource())
	if err != nil {
		panic(err)
	}

	s.authDomain = domain.NewAuthDomain(s.playerRepo, s.tokenEngine)
	s.spinDomain = domain.NewSpinDomain(
		s.playerRepo,
		s.balanceRepo,
		s.spinRecordRepo,
		s.tokenRepo,
		engine,
		s.executor,
		s.publisher,
	)
	s.claimDomain = domain.NewClaimDomain(
		s.playerRepo,
		s.balanceRepo,
		s.tokenRepo,
		s.claimRepo,
		s.vault,
		s.claimSignerKey,
	)
}
