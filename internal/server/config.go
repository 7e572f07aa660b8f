// Package server implements the pedigree sync backend: a thin HTTP API
// that persists each user's family graph remotely, keyed by their
// Google account subject, and accepts both full replacements and delta
// patches.
package server

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pedigree-app/pedigree/pkg/errors"
)

// Config holds server settings, loaded from a TOML file with
// environment overrides.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`

	// Store selects the persistence backend: "memory" or "mongo".
	Store string `toml:"store"`

	// Mongo settings, used when Store is "mongo".
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	// RedisAddr enables the Redis session store when non-empty;
	// otherwise sessions are held in memory.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`

	// DevTokens maps static bearer tokens to identities for local
	// development, when no real token verifier is configured.
	DevTokens map[string]DevIdentity `toml:"dev_tokens"`
}

// DevIdentity is a statically configured identity for development.
type DevIdentity struct {
	GoogleSub string `toml:"google_sub"`
	Email     string `toml:"email"`
	Name      string `toml:"name"`
}

// DefaultConfig returns a development configuration: memory store,
// in-memory sessions, port 8080.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		Store:         "memory",
		MongoDatabase: "pedigree",
	}
}

// LoadConfig reads the TOML file at path (skipped when path is empty)
// and applies environment overrides: PEDIGREE_ADDR, PEDIGREE_STORE,
// PEDIGREE_MONGO_URI, PEDIGREE_MONGO_DATABASE, PEDIGREE_REDIS_ADDR,
// PEDIGREE_REDIS_PASSWORD.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
		}
	}

	overrides := map[string]*string{
		"PEDIGREE_ADDR":           &cfg.Addr,
		"PEDIGREE_STORE":          &cfg.Store,
		"PEDIGREE_MONGO_URI":      &cfg.MongoURI,
		"PEDIGREE_MONGO_DATABASE": &cfg.MongoDatabase,
		"PEDIGREE_REDIS_ADDR":     &cfg.RedisAddr,
		"PEDIGREE_REDIS_PASSWORD": &cfg.RedisPassword,
	}
	for env, dst := range overrides {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case "memory":
	case "mongo":
		if c.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo store requires mongo_uri")
		}
		if c.MongoDatabase == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo store requires mongo_database")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store %q (want memory or mongo)", c.Store)
	}
	return nil
}
