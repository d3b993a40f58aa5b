// Package credentials abstracts where the WhatsApp Business credentials live.
// Deployments back it with env vars, a secret store, or a per-tenant lookup;
// the rest of the system only sees the Provider interface.
package credentials

import "fmt"

// Provider exposes the four capabilities the Checkout integration needs.
// Each call may fail with *ConfigError when the underlying value is
// unavailable; such failures are fatal for the operation and never retried.
type Provider interface {
	// AccessToken returns the bearer token for the Business API.
	AccessToken() (string, error)
	// AppSecret returns the app secret used to verify webhook signatures.
	AppSecret() (string, error)
	// AccountID returns the WhatsApp Business Account ID.
	AccountID() (string, error)
	// PaymentConfiguration returns the payment configuration name for the account.
	PaymentConfiguration() (string, error)
}

// ConfigError indicates a required credential or configuration value is
// missing or unusable.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Key)
}

// Static is a Provider over fixed values, typically loaded from app config.
type Static struct {
	Token         string
	Secret        string
	WABA          string
	PaymentConfig string
}

func (s *Static) AccessToken() (string, error) {
	if s.Token == "" {
		return "", &ConfigError{Key: "access token"}
	}
	return s.Token, nil
}

func (s *Static) AppSecret() (string, error) {
	if s.Secret == "" {
		return "", &ConfigError{Key: "app secret"}
	}
	return s.Secret, nil
}

func (s *Static) AccountID() (string, error) {
	if s.WABA == "" {
		return "", &ConfigError{Key: "business account id"}
	}
	return s.WABA, nil
}

func (s *Static) PaymentConfiguration() (string, error) {
	if s.PaymentConfig == "" {
		return "", &ConfigError{Key: "payment configuration"}
	}
	return s.PaymentConfig, nil
}
