package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthConfig holds the settings for issuing and verifying bearer tokens.
type AuthConfig struct {
	// Secret is the HMAC key tokens are signed with.
	Secret string `koanf:"secret"`
	// Issuer is stamped into and required from every token.
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

// String returns a string representation of the auth configuration.
func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  secret: %s\n", mask(c.Secret)))
	b.WriteString(fmt.Sprintf("  issuer: %s\n", c.Issuer))
	b.WriteString(fmt.Sprintf("  ttl: %v\n", c.TTL))
	return b.String()
}

func (c *AuthConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("auth secret is not configured")
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("auth secret must be at least 32 bytes")
	}
	if c.Issuer == "" {
		return fmt.Errorf("auth issuer is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("auth token TTL is not configured")
	}
	return nil
}
