package configloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Chain    ChainConfig    `yaml:"chain"`
	Explorer ExplorerConfig `yaml:"explorer"`
	PriceAPI PriceAPIConfig `yaml:"priceApi"`
	Transfer TransferConfig `yaml:"transfer"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// ChainConfig holds the blockchain node and token contract configuration.
type ChainConfig struct {
	RPCEndpoint   string `yaml:"rpcEndpoint"`
	ChainID       int64  `yaml:"chainID"`
	TokenContract string `yaml:"tokenContract"`
	RPCTimeoutMs  int64  `yaml:"rpcTimeoutMs"`
}

// ExplorerConfig holds the block-explorer REST API configuration.
type ExplorerConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimitPerSec      float64 `yaml:"rateLimitPerSec"`
	RateLimitBurst       int     `yaml:"rateLimitBurst"`
}

// PriceAPIConfig holds the price quote service configuration.
type PriceAPIConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	AssetID              string  `yaml:"assetID"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	FallbackPriceUSD     float64 `yaml:"fallbackPriceUSD"`
}

// TransferConfig holds the deposit destination and signing key.
type TransferConfig struct {
	DepositAddress            string `yaml:"depositAddress"`
	PrivateKey                string `yaml:"privateKey"`
	ConfirmationTimeoutSecond int    `yaml:"confirmationTimeoutSeconds"`
}

// CacheConfig holds the freshness window for cached reads.
type CacheConfig struct {
	FreshnessWindowSeconds int `yaml:"freshnessWindowSeconds"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "debug", "info", "warn", "error"
}

// Load loads configuration from a YAML file, applies defaults and overlays
// secret values from the environment. Presence of required credentials is
// NOT validated here: services check at call time via IsConfigured.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Chain.ChainID == 0 {
		cfg.Chain.ChainID = 1
		logrus.Infof("Chain.ChainID not set, defaulting to %d (Ethereum mainnet)", cfg.Chain.ChainID)
	}
	if cfg.Chain.RPCTimeoutMs == 0 {
		cfg.Chain.RPCTimeoutMs = 10000
	}
	if cfg.Explorer.BaseURL == "" {
		cfg.Explorer.BaseURL = "https://api.etherscan.io/api"
		logrus.Infof("Explorer.BaseURL not set, defaulting to %s", cfg.Explorer.BaseURL)
	}
	if cfg.Explorer.RequestTimeoutMillis == 0 {
		cfg.Explorer.RequestTimeoutMillis = 10000
	}
	if cfg.Explorer.RateLimitPerSec == 0 {
		// Etherscan free tier allows 5 req/s.
		cfg.Explorer.RateLimitPerSec = 5
	}
	if cfg.Explorer.RateLimitBurst == 0 {
		cfg.Explorer.RateLimitBurst = 2
	}
	if cfg.PriceAPI.BaseURL == "" {
		cfg.PriceAPI.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Infof("PriceAPI.BaseURL not set, defaulting to %s", cfg.PriceAPI.BaseURL)
	}
	if cfg.PriceAPI.AssetID == "" {
		cfg.PriceAPI.AssetID = "ethereum"
	}
	if cfg.PriceAPI.RequestTimeoutMillis == 0 {
		cfg.PriceAPI.RequestTimeoutMillis = 5000
	}
	if cfg.PriceAPI.FallbackPriceUSD == 0 {
		cfg.PriceAPI.FallbackPriceUSD = 2500
		logrus.Infof("PriceAPI.FallbackPriceUSD not set, defaulting to %.0f", cfg.PriceAPI.FallbackPriceUSD)
	}
	if cfg.Transfer.ConfirmationTimeoutSecond == 0 {
		cfg.Transfer.ConfirmationTimeoutSecond = 60
	}
	if cfg.Cache.FreshnessWindowSeconds == 0 {
		cfg.Cache.FreshnessWindowSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RPC_ENDPOINT"); v != "" {
		cfg.Chain.RPCEndpoint = v
	}
	if v := os.Getenv("TOKEN_CONTRACT"); v != "" {
		cfg.Chain.TokenContract = v
	}
	if v := os.Getenv("EXPLORER_API_KEY"); v != "" {
		cfg.Explorer.APIKey = v
	}
	if v := os.Getenv("DEPOSIT_ADDRESS"); v != "" {
		cfg.Transfer.DepositAddress = v
	}
	if v := os.Getenv("WALLET_PRIVATE_KEY"); v != "" {
		cfg.Transfer.PrivateKey = v
	}
}

// IsConfigured reports whether a configuration value is usable. Empty values
// and template placeholders (anything still containing "your", e.g.
// "your_api_key_here") count as unconfigured.
func IsConfigured(value string) bool {
	if value == "" {
		return false
	}
	return !strings.Contains(strings.ToLower(value), "your")
}
