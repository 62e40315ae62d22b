package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageConfig describes the remote file storage the service proxies
// product and profile images through.
type StorageConfig struct {
	// APIEndpoint is the base URL of the storage provider's metadata API.
	APIEndpoint string `koanf:"apiendpoint"`
	// ContentEndpoint is the base URL used for byte up/downloads.
	ContentEndpoint string `koanf:"contentendpoint"`
	// LinkPrefix is the public namespace of share links. Locators that do
	// not start with this prefix are rejected without a network call.
	LinkPrefix string `koanf:"linkprefix"`
	AppKey     string `koanf:"appkey"`
	AppSecret  string `koanf:"appsecret"`
	// ScratchDir is local temp space used as a transit buffer for downloads.
	// Empty means os.TempDir.
	ScratchDir   string        `koanf:"scratchdir"`
	FetchTimeout time.Duration `koanf:"fetchtimeout"`
	Retry        RetryConfig   `koanf:"retry"`
	Breaker      BreakerConfig `koanf:"breaker"`
}

type RetryConfig struct {
	MaxAttempts    int           `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  apiendpoint: %s\n", c.APIEndpoint))
	b.WriteString(fmt.Sprintf("  contentendpoint: %s\n", c.ContentEndpoint))
	b.WriteString(fmt.Sprintf("  linkprefix: %s\n", c.LinkPrefix))
	b.WriteString(fmt.Sprintf("  appkey: %s\n", mask(c.AppKey)))
	b.WriteString(fmt.Sprintf("  scratchdir: %s\n", c.ScratchDir))
	b.WriteString(fmt.Sprintf("  fetchtimeout: %v\n", c.FetchTimeout))
	b.WriteString(fmt.Sprintf("  retry.maxattempts: %d\n", c.Retry.MaxAttempts))
	b.WriteString(fmt.Sprintf("  retry.initialbackoff: %v\n", c.Retry.InitialBackoff))
	b.WriteString(fmt.Sprintf("  breaker.consecutivefailures: %d\n", c.Breaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  breaker.opentimeout: %v\n", c.Breaker.OpenTimeout))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if c.APIEndpoint == "" {
		return fmt.Errorf("storage API endpoint is not configured")
	}
	if c.ContentEndpoint == "" {
		return fmt.Errorf("storage content endpoint is not configured")
	}
	if c.LinkPrefix == "" {
		return fmt.Errorf("storage link prefix is not configured")
	}
	if c.AppKey == "" || c.AppSecret == "" {
		return fmt.Errorf("storage credentials are not configured")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("storage fetch timeout is not configured")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("storage retry.maxattempts must be greater than 0")
	}
	if c.Retry.InitialBackoff <= 0 {
		return fmt.Errorf("storage retry.initialbackoff must be greater than 0")
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("storage breaker.consecutivefailures must be greater than 0")
	}
	if c.Breaker.OpenTimeout <= 0 {
		return fmt.Errorf("storage breaker.opentimeout must be greater than 0")
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}
