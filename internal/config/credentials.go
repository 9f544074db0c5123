package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environment variables holding the bot login.
const (
	EnvUsername = "SURUEXT_WIKIDATA_USERNAME"
	EnvPassword = "SURUEXT_WIKIDATA_PASSWORD"
)

// DefaultEnvFile is loaded, if present, before reading the environment.
const DefaultEnvFile = ".env"

// Credentials is a Special:BotPasswords login ("User@bot" and its
// generated password). It is never read from the YAML file.
type Credentials struct {
	Username string `env:"SURUEXT_WIKIDATA_USERNAME"`
	Password string `env:"SURUEXT_WIKIDATA_PASSWORD"`
}

// Empty reports whether either half of the login is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// LoadCredentials loads envFile into the process environment (variables
// already set win) and reads the credentials from it. A missing envFile is
// not an error.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var c Credentials
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials from environment: %w", err)
	}
	return c, nil
}
