// Package config provides configuration of the naughtyctl tool.
//
// Configuration is read from the YAML file (if any) over the defaults and
// then overridden by the NAUGHTY_* environment variables, e.g.
// NAUGHTY_LEDGER_PATH or NAUGHTY_PROTOCOL_REQUIRED_STAKE.
package config

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/naughty-agents/protocol-contract/contracts/oracle"
	"github.com/naughty-agents/protocol-contract/contracts/trust"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is a prefix of the environment variables overriding the config.
const EnvPrefix = "naughty"

type ctxKey string

const configContextKey ctxKey = "naughty.config"

// WithContext returns a copy of ctx carrying cfg.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

// FromContext returns Config stored in ctx by WithContext. Returns nil if
// there is no one.
func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// Supported ledger storage types.
const (
	LedgerInMemory = dbconfig.InMemoryDB
	LedgerBoltDB   = dbconfig.BoltDB
	LedgerLevelDB  = dbconfig.LevelDB
)

type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Logger   LoggerConfig   `yaml:"logger"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type LedgerConfig struct {
	Type string `yaml:"type"`
	// File for boltdb, directory for leveldb.
	Path string `yaml:"path"`
}

type ProtocolConfig struct {
	Owner                 string `yaml:"owner"`
	RequiredStake         int64  `yaml:"requiredStake"         split_words:"true"`
	GenesisStake          int64  `yaml:"genesisStake"          split_words:"true"`
	PrimarySlashPercent   int64  `yaml:"primarySlashPercent"   split_words:"true"`
	DelegatedSlashPercent int64  `yaml:"delegatedSlashPercent" split_words:"true"`
	SlashAuthority        string `yaml:"slashAuthority"        split_words:"true"`
	Quorum                uint64 `yaml:"quorum"`
	SecurityModule        string `yaml:"securityModule"        split_words:"true"`
}

type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type MetricsConfig struct {
	// Prometheus text file written on exit. Empty disables metrics.
	Textfile string `yaml:"textfile"`
}

// DefaultRequiredStake is a minimum registration stake used by default.
const DefaultRequiredStake = 10_000_000_000_000_000

// Default returns Config with default values.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Type: LedgerBoltDB,
			Path: "naughty.bolt",
		},
		Protocol: ProtocolConfig{
			RequiredStake:         DefaultRequiredStake,
			PrimarySlashPercent:   trust.DefaultPrimarySlashPercent,
			DelegatedSlashPercent: trust.DefaultDelegatedSlashPercent,
			Quorum:                oracle.DefaultQuorum,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// LoadConfig reads Config from the given YAML file over the defaults and
// applies environment overrides. Empty path means no file.
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		err = yaml.Unmarshal(buf, cfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	err := envconfig.Process(EnvPrefix, cfg)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks Config consistency.
func (c *Config) Validate() error {
	switch c.Ledger.Type {
	case LedgerInMemory:
	case LedgerBoltDB, LedgerLevelDB:
		if c.Ledger.Path == "" {
			return fmt.Errorf("missing %s ledger path", c.Ledger.Type)
		}
	default:
		return fmt.Errorf("unsupported ledger type %q", c.Ledger.Type)
	}

	if _, err := c.Protocol.TrustConfig(); err != nil {
		return err
	}

	oc, err := c.Protocol.OracleConfig()
	if err != nil {
		return err
	}

	return oc.Validate()
}

// DBConfiguration converts LedgerConfig into the storage configuration.
func (c LedgerConfig) DBConfiguration() dbconfig.DBConfiguration {
	res := dbconfig.DBConfiguration{Type: c.Type}

	switch c.Type {
	case LedgerBoltDB:
		res.BoltDBOptions.FilePath = c.Path
	case LedgerLevelDB:
		res.LevelDBOptions.DataDirectoryPath = c.Path
	}

	return res
}

// TrustConfig converts ProtocolConfig into the TrustLedger configuration.
func (c ProtocolConfig) TrustConfig() (trust.Config, error) {
	res := trust.Config{
		RequiredStake:         big.NewInt(c.RequiredStake),
		GenesisStake:          big.NewInt(c.GenesisStake),
		PrimarySlashPercent:   c.PrimarySlashPercent,
		DelegatedSlashPercent: c.DelegatedSlashPercent,
	}

	var err error

	if c.SlashAuthority != "" {
		res.SlashAuthority, err = ParseAccount(c.SlashAuthority)
		if err != nil {
			return res, fmt.Errorf("invalid slash authority: %w", err)
		}
	}

	return res, res.Validate()
}

// OracleConfig converts ProtocolConfig into the ReviewOracle configuration.
func (c ProtocolConfig) OracleConfig() (oracle.Config, error) {
	res := oracle.Config{Quorum: c.Quorum}

	if c.SecurityModule != "" {
		var err error

		res.SecurityModule, err = ParseAccount(c.SecurityModule)
		if err != nil {
			return res, fmt.Errorf("invalid security module: %w", err)
		}
	}

	return res, nil
}

// OwnerAccount returns the configured protocol owner. Returns an error if it
// is missing.
func (c ProtocolConfig) OwnerAccount() (util.Uint160, error) {
	if c.Owner == "" {
		return util.Uint160{}, errors.New("missing protocol owner")
	}
	return ParseAccount(c.Owner)
}

// ParseAccount parses account given either as Neo address or as
// little-endian hex string with optional 0x prefix.
func ParseAccount(s string) (util.Uint160, error) {
	if u, err := address.StringToUint160(s); err == nil {
		return u, nil
	}

	u, err := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return u, fmt.Errorf("neither address nor hex: %q", s)
	}

	return u, nil
}

// BuildLogger constructs zap logger from LoggerConfig. Debug level is forced
// if debug is set.
func (c LoggerConfig) BuildLogger(debug bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	if debug {
		lvl = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.Level = zap.NewAtomicLevelAt(lvl)
	cc.Encoding = c.Encoding
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.DisableStacktrace = !debug
	cc.Sampling = nil

	return cc.Build()
}
