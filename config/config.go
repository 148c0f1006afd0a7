package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	ApiServer  ServerConfigs
	Database   DatabaseConfigs
	Auth       AuthConfigs
	Blockchain BlockchainConfigs
	Spin       SpinConfigs
	Kafka      KafkaConfigs
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type BlockchainConfigs struct {
	ChainID int64
	RPCs    []string

	// VaultAddress is the RewardVault contract every claim signature and
	// auto-transfer speaks to.
	VaultAddress string

	// ClaimSignerKey authorizes claim signatures; OperatorKey submits
	// auto-transfer transactions. They are distinct custodial roles.
	ClaimSignerKey string
	OperatorKey    string

	ClaimDeadline    time.Duration
	TransferGasLimit uint64

	RPCTimeout                 time.Duration
	ReceiptPollInterval        time.Duration
	ReceiptTimeout             time.Duration
	RefreshConnectionFrequency time.Duration
}

type SpinConfigs struct {
	DailyCap     int
	AmountMin    int
	AmountMax    int
	MinClaimable uint64

	BeginnerLuckEnabled bool
	BeginnerSpins       int
}

type KafkaConfigs struct {
	Addr string

	// RewardEventTopic receives spin outcomes and settled transfers.
	RewardEventTopic string
}
