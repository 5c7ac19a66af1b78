package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/charity-prospector/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	ProPublica ProPublicaConfig `yaml:"propublica" mapstructure:"propublica"`
	Apollo     ApolloConfig     `yaml:"apollo" mapstructure:"apollo"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// SearchConfig holds the default financial criteria and search bounds.
type SearchConfig struct {
	MinRevenue            float64 `yaml:"min_revenue" mapstructure:"min_revenue"`
	MaxRevenue            float64 `yaml:"max_revenue" mapstructure:"max_revenue"`
	MinFundraisingExpense float64 `yaml:"min_fundraising_expense" mapstructure:"min_fundraising_expense"`
	MinAgencySpend        float64 `yaml:"min_agency_spend" mapstructure:"min_agency_spend"`
	TargetCount           int     `yaml:"target_count" mapstructure:"target_count"`
	MaxPages              int     `yaml:"max_pages" mapstructure:"max_pages"`
	State                 string  `yaml:"state" mapstructure:"state"`
	Keyword               string  `yaml:"keyword" mapstructure:"keyword"`
}

// Params converts the search configuration into run parameters.
func (c SearchConfig) Params() model.SearchParams {
	return model.SearchParams{
		MinRevenue:            c.MinRevenue,
		MaxRevenue:            c.MaxRevenue,
		MinFundraisingExpense: c.MinFundraisingExpense,
		MinAgencySpend:        c.MinAgencySpend,
		TargetCount:           c.TargetCount,
		MaxPages:              c.MaxPages,
		State:                 c.State,
		Keyword:               c.Keyword,
	}
}

// ProPublicaConfig holds Nonprofit Explorer API settings.
type ProPublicaConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	XMLBaseURL     string `yaml:"xml_base_url" mapstructure:"xml_base_url"`
	RequestDelayMS int    `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	CacheTTLHours  int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// RequestDelay returns the minimum spacing between API calls.
func (c ProPublicaConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// CacheTTL returns the response cache lifetime.
func (c ProPublicaConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// ApolloConfig holds Apollo.io enrichment settings. An empty key disables
// enrichment.
type ApolloConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "prospector.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("search.min_revenue", 20_000_000)
	v.SetDefault("search.max_revenue", 200_000_000)
	v.SetDefault("search.min_fundraising_expense", 2_000_000)
	v.SetDefault("search.min_agency_spend", 500_000)
	v.SetDefault("search.target_count", 10)
	v.SetDefault("search.max_pages", 200)
	v.SetDefault("propublica.base_url", "https://projects.propublica.org/nonprofits/api/v2")
	v.SetDefault("propublica.xml_base_url", "https://projects.propublica.org/nonprofits/download-xml")
	v.SetDefault("propublica.request_delay_ms", 500)
	v.SetDefault("propublica.cache_ttl_hours", 1)
	v.SetDefault("apollo.base_url", "https://api.apollo.io/api/v1")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
