// Package app loads configuration and wires the storage driver, the
// repositories and the grant model together. Configuration is an explicit
// struct built once at startup and passed down; nothing below this package
// reads the environment.
package app

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
)

// localEndpoint is where dynamodb-local listens by default.
const localEndpoint = "http://127.0.0.1:8000"

type Config struct {
	// Env is the runtime environment (local, dev, staging, prod). "local"
	// implies a local DynamoDB endpoint unless one is set explicitly.
	Env string
	// Stage names the deployment the tables belong to; table names derive
	// from it unless overridden individually.
	Stage string

	// Region is the AWS region for the dynamo driver.
	Region string
	// Endpoint overrides the DynamoDB service endpoint.
	Endpoint string

	// StoreDriver selects the storage backend (dynamo, sqlite).
	StoreDriver string
	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string

	// Salt is the process-wide static salt for password hashing. Changing
	// it invalidates every stored credential.
	Salt string
	// StateSecret keys the redirect state cipher.
	StateSecret string

	LogLevel  string
	LogFormat string

	Tables store.Tables
}

// LoadConfig reads configuration from the environment, after loading the
// nearest .env file up the directory tree.
func LoadConfig() Config {
	loadDotEnv()

	cfg := Config{
		Env:         env.GetString("ENV", "dev"),
		Stage:       env.GetString("STAGE", "dev"),
		Region:      env.GetString("AWS_REGION", "us-east-1"),
		Endpoint:    env.GetString("DYNAMODB_ENDPOINT", ""),
		StoreDriver: env.GetString("STORE_DRIVER", "dynamo"),
		SQLitePath:  env.GetString("SQLITE_PATH", "grantstore.db"),
		Salt:        env.GetString("PASSWORD_SALT", ""),
		StateSecret: env.GetString("STATE_SECRET", ""),
		LogLevel:    env.GetString("LOG_LEVEL", "info"),
		LogFormat:   env.GetString("LOG_FORMAT", "json"),
	}

	if cfg.Env == "local" && cfg.Endpoint == "" {
		cfg.Endpoint = localEndpoint
	}

	cfg.Tables = store.TablesForStage(cfg.Stage)
	cfg.Tables.Credentials = env.GetString("TABLE_CREDENTIALS", cfg.Tables.Credentials)
	cfg.Tables.Clients = env.GetString("TABLE_CLIENTS", cfg.Tables.Clients)
	cfg.Tables.Authorizations = env.GetString("TABLE_AUTHORIZATIONS", cfg.Tables.Authorizations)
	cfg.Tables.AccessTokens = env.GetString("TABLE_ACCESS_TOKENS", cfg.Tables.AccessTokens)
	cfg.Tables.RefreshTokens = env.GetString("TABLE_REFRESH_TOKENS", cfg.Tables.RefreshTokens)

	return cfg
}

// loadDotEnv walks from the working directory up to the filesystem root and
// loads the first .env file it finds.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
