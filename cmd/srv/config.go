package main

import (
	"crypto/ecdsa"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spinvault/backend/config"
	"github.com/spinvault/backend/pkg/ethutil"
)

func (s *srv) loadConfig() {
	// Missing .env is fine, variables may come from the environment.
	godotenv.Load()

	s.configs = &config.Configs{
		Env: getEnv("ENV", "local"),
		ApiServer: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
			Cert: getEnv("SERVER_CERT", ""),
			Key:  getEnv("SERVER_KEY", ""),
		},
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "mysql"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "spinvault"),
			Password: getEnv("MYSQL_PASSWORD", "spinvault"),
			Database: getEnv("MYSQL_DATABASE", "spinvault"),
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token_secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: getDuration("ACCESS_TOKEN_DURATION", time.Hour*24),
			},
		},
		Blockchain: config.BlockchainConfigs{
			ChainID:                    getInt64("CHAIN_ID", 1),
			RPCs:                       strings.Split(getEnv("CHAIN_RPC_URLS", ""), ","),
			VaultAddress:               getEnv("VAULT_ADDRESS", ""),
			ClaimSignerKey:             getEnv("CLAIM_SIGNER_KEY", ""),
			OperatorKey:                getEnv("OPERATOR_KEY", ""),
			ClaimDeadline:              getDuration("CLAIM_DEADLINE", time.Hour*24),
			TransferGasLimit:           uint64(getInt64("TRANSFER_GAS_LIMIT", 150000)),
			RPCTimeout:                 getDuration("RPC_TIMEOUT", time.Second*5),
			ReceiptPollInterval:        getDuration("RECEIPT_POLL_INTERVAL", time.Second*2),
			ReceiptTimeout:             getDuration("RECEIPT_TIMEOUT", time.Minute*2),
			RefreshConnectionFrequency: getDuration("REFRESH_CONNECTION_FREQUENCY", time.Minute*10),
		},
		Spin: config.SpinConfigs{
			DailyCap:            getInt("SPIN_DAILY_CAP", 3),
			AmountMin:           getInt("SPIN_AMOUNT_MIN", 20),
			AmountMax:           getInt("SPIN_AMOUNT_MAX", 50),
			MinClaimable:        uint64(getInt64("MIN_CLAIMABLE", 100)),
			BeginnerLuckEnabled: getEnv("BEGINNER_LUCK", "true") == "true",
			BeginnerSpins:       getInt("BEGINNER_SPINS", 3),
		},
		Kafka: config.KafkaConfigs{
			Addr:             getEnv("KAFKA_ADDR", ""),
			RewardEventTopic: getEnv("KAFKA_REWARD_EVENT_TOPIC", "reward-events"),
		},
	}
}

func loadKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return ethutil.LoadPrivateKey(hexKey)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func getInt64(key string, fallback int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}

	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
