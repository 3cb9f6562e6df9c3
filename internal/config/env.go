package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by LoadEnv.
const EnvPrefix = "LATESTVER"

// Env holds overrides read from the environment. Unset variables leave the
// corresponding field at its zero value, which Apply ignores.
//
//	LATESTVER_TIMEOUT        request timeout, e.g. "45s"
//	LATESTVER_RETRIES        retry count
//	LATESTVER_USER_AGENT     User-Agent header
//	LATESTVER_PROXY          proxy URL
//	LATESTVER_MAX_BODY_SIZE  body limit in bytes
//	LATESTVER_DB_DIR         history database directory
type Env struct {
	Timeout     time.Duration `split_words:"true"`
	Retries     *int          `split_words:"true"`
	UserAgent   string        `split_words:"true"`
	Proxy       string        `split_words:"true"`
	MaxBodySize int64         `split_words:"true"`
	DBDir       string        `split_words:"true"`
}

// LoadEnv reads the LATESTVER_* environment variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
	}
	return &env, nil
}

// Apply overrides the fields of c that are set in e.
func (e *Env) Apply(c *Config) {
	if e.Timeout != 0 {
		c.Timeout = e.Timeout
	}
	if e.Retries != nil {
		c.Retries = *e.Retries
	}
	if e.UserAgent != "" {
		c.UserAgent = e.UserAgent
	}
	if e.Proxy != "" {
		c.Proxy = e.Proxy
	}
	if e.MaxBodySize != 0 {
		c.MaxBodySize = e.MaxBodySize
	}
	if e.DBDir != "" {
		c.DBDir = e.DBDir
	}
}
