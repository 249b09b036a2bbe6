package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved server configuration.
type Settings struct {
	ListenAddr string `mapstructure:"listen_addr"`

	MaxConcurrentRequests int   `mapstructure:"max_concurrent_requests"`
	MaxSessions           int   `mapstructure:"max_sessions"`
	MaxUploadBytes        int64 `mapstructure:"max_upload_bytes"`

	PreviewPageSize   int `mapstructure:"preview_page_size"`
	MaxFilterOptions  int `mapstructure:"max_filter_options"`
	TopN              int `mapstructure:"top_n"`
	ScatterSampleSize int `mapstructure:"scatter_sample_size"`

	OperationTimeout      time.Duration `mapstructure:"operation_timeout"`
	AcquireRequestTimeout time.Duration `mapstructure:"acquire_request_timeout"`
	SessionIdleTTL        time.Duration `mapstructure:"session_idle_ttl"`
	SessionCleanupPeriod  time.Duration `mapstructure:"session_cleanup_period"`
	ShutdownTimeout       time.Duration `mapstructure:"shutdown_timeout"`
}

// Load resolves settings from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("TABDASH")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("max_sessions", DefaultMaxSessions)
	v.SetDefault("max_upload_bytes", int64(DefaultMaxUploadBytes))
	v.SetDefault("preview_page_size", DefaultPreviewPageSize)
	v.SetDefault("max_filter_options", DefaultMaxFilterOptions)
	v.SetDefault("top_n", DefaultTopN)
	v.SetDefault("scatter_sample_size", DefaultScatterSampleSize)
	v.SetDefault("operation_timeout", DefaultOperationTimeout)
	v.SetDefault("acquire_request_timeout", DefaultAcquireRequestTimeout)
	v.SetDefault("session_idle_ttl", DefaultSessionIdleTTL)
	v.SetDefault("session_cleanup_period", DefaultSessionCleanupPeriod)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("config: max_concurrent_requests must be > 0")
	}
	if s.MaxSessions <= 0 {
		return fmt.Errorf("config: max_sessions must be > 0")
	}
	if s.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be > 0")
	}
	if s.PreviewPageSize <= 0 || s.PreviewPageSize > MaxPreviewPageSize {
		return fmt.Errorf("config: preview_page_size must be in (0, %d]", MaxPreviewPageSize)
	}
	if s.TopN <= 0 || s.TopN > MaxTopN {
		return fmt.Errorf("config: top_n must be in (0, %d]", MaxTopN)
	}
	return nil
}
