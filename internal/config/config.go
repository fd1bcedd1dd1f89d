// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	RPCList              []string `mapstructure:"rpc_list"`
	PollIntervalMs       int      `mapstructure:"poll_interval_ms"`
	StalenessThreshold   uint64   `mapstructure:"staleness_threshold_slots"`
	MaxAttempts          uint     `mapstructure:"max_attempts"`
	MaxFeeLamports       uint64   `mapstructure:"max_fee_lamports"`
	RetryBaseDelayMs     int      `mapstructure:"retry_base_delay_ms"`
	ProgramID            string   `mapstructure:"program_id"`
	Slab                 string   `mapstructure:"slab"`
	Oracle               string   `mapstructure:"oracle"`
	SlabSlotOffset       uint64   `mapstructure:"slab_slot_offset"`
	OracleSlotOffset     uint64   `mapstructure:"oracle_slot_offset"`
	MetricsAddr          string   `mapstructure:"metrics_addr"`
	ReportIntervalSec    int      `mapstructure:"report_interval_sec"`
	DebugLogging         bool     `mapstructure:"debug_logging"`
	PrivateKey           string   `mapstructure:"private_key"`

	programID solana.PublicKey
	slab      solana.PublicKey
	oracle    solana.PublicKey
}

const (
	DefaultPollIntervalMs     = 5000
	DefaultStalenessThreshold = 25
	DefaultMaxAttempts        = 5
	DefaultMaxFeeLamports     = 5_000_000
	DefaultRetryBaseDelayMs   = 1000
	DefaultReportIntervalSec  = 60
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"poll_interval_ms":          DefaultPollIntervalMs,
		"staleness_threshold_slots": DefaultStalenessThreshold,
		"max_attempts":              DefaultMaxAttempts,
		"max_fee_lamports":          DefaultMaxFeeLamports,
		"retry_base_delay_ms":       DefaultRetryBaseDelayMs,
		"report_interval_sec":       DefaultReportIntervalSec,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	return validateAddresses(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.StalenessThreshold == 0 {
		return errors.New("invalid staleness_threshold_slots")
	}
	if cfg.MaxAttempts == 0 {
		return errors.New("invalid max_attempts")
	}
	if cfg.MaxFeeLamports == 0 {
		return errors.New("invalid max_fee_lamports")
	}
	if cfg.RetryBaseDelayMs <= 0 {
		return errors.New("invalid retry_base_delay_ms")
	}
	if cfg.ReportIntervalSec <= 0 {
		return errors.New("invalid report_interval_sec")
	}
	return nil
}

func validateAddresses(cfg *Config) error {
	var err error
	if cfg.programID, err = solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return errors.New("invalid program_id address")
	}
	if cfg.slab, err = solana.PublicKeyFromBase58(cfg.Slab); err != nil {
		return errors.New("invalid slab address")
	}
	if cfg.oracle, err = solana.PublicKeyFromBase58(cfg.Oracle); err != nil {
		return errors.New("invalid oracle address")
	}
	return nil
}

// ProgramKey возвращает распарсенный адрес target-программы.
func (c *Config) ProgramKey() solana.PublicKey { return c.programID }

// SlabKey возвращает распарсенный адрес slab-аккаунта.
func (c *Config) SlabKey() solana.PublicKey { return c.slab }

// OracleKey возвращает распарсенный адрес oracle-аккаунта.
func (c *Config) OracleKey() solana.PublicKey { return c.oracle }

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("PERCOLATOR_KEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envKey := v.GetString("PRIVATE_KEY")
	if envKey != "" {
		cfg.PrivateKey = envKey
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
