package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
	"github.com/xenking/whatsapp-checkout/internal/graph"
)

// Config holds the complete application configuration, loadable from
// environment variables (WACHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"Webhook server listen address"`
	GraphBaseURL string `usage:"Graph API base URL (override for tests)" flag:"graph-base-url"`

	AccessToken          string `usage:"Business API access token" flag:"access-token"`
	AppSecret            string `usage:"App secret for webhook signature verification" flag:"app-secret"`
	BusinessAccountID    string `usage:"WhatsApp Business Account ID" flag:"business-account-id"`
	PaymentConfiguration string `usage:"Payment configuration name" flag:"payment-configuration"`
	VerifyToken          string `usage:"Webhook subscribe verify token" flag:"verify-token"`

	RateLimit RateLimitConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client rate limiter on the webhook server.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, applying platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "WACHECKOUT",
		Files:     []string{"config.yaml", "/etc/wacheckout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.VerifyToken == "" {
		return nil, errors.New("verify token is required: set WACHECKOUT_VERIFY_TOKEN")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like PORT to the WACHECKOUT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
	if c.GraphBaseURL == "" {
		c.GraphBaseURL = graph.DefaultBaseURL
	}
}

// Credentials builds the credential provider from the loaded configuration.
// Values left empty here surface as ConfigError at the point of use, per the
// provider contract.
func (c *Config) Credentials() *credentials.Static {
	return &credentials.Static{
		Token:         c.AccessToken,
		Secret:        c.AppSecret,
		WABA:          c.BusinessAccountID,
		PaymentConfig: c.PaymentConfiguration,
	}
}
