package models

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	DatabaseURL  string
	Port         string
	Debug        bool
	CookieSecure bool
}

// ReadEnvConfig loads .env (when present) and then reads POLLS_* variables.
func ReadEnvConfig() EnvConfig {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Println("Ignoring malformed .env file:", err)
	}
	port := os.Getenv("POLLS_PORT")
	if port == "" {
		port = "23495"
	}
	return EnvConfig{
		DatabaseURL:  os.Getenv("POLLS_DATABASE_URL"),
		Port:         port,
		Debug:        os.Getenv("POLLS_DEBUG") == "true",
		CookieSecure: os.Getenv("POLLS_COOKIE_SECURE") == "true",
	}
}

func (c EnvConfig) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("POLLS_DATABASE_URL is not set")
	}
	return nil
}
