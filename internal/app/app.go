package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/yichend/billsync/internal/config"
	"github.com/yichend/billsync/internal/remote"
	"github.com/yichend/billsync/internal/store"
	"github.com/yichend/billsync/internal/syncer"
)

type App struct {
	Engine *syncer.Engine
	Tokens *remote.TokenStore
	Store  store.Repository
}

// NewApp wires config, local store, remote client and the sync engine,
// and returns the App entity with its cleanup func.
func NewApp(cfg *config.Config, migrationFS fs.FS, log zerolog.Logger) (*App, func(), error) {
	dbPathRaw := cfg.Database.Path

	if dbPathRaw == "" {
		appDir, _ := getAppDataDir()
		dbPathRaw = filepath.Join(appDir, "billsync.db")
	}

	dbStore, err := store.NewStore(dbPathRaw, migrationFS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	tokenPath := cfg.API.TokenPath
	if tokenPath == "" {
		appDir, _ := getAppDataDir()
		tokenPath = filepath.Join(appDir, "token.json")
	}
	tokens := remote.NewTokenStore(tokenPath)

	client := remote.NewClient(remote.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		OnAuthFailure: func() {
			if err := tokens.Clear(); err != nil {
				log.Error().Err(err).Msg("failed to clear expired credential")
			}
			pterm.Warning.Println("Session expired, please log in again")
		},
	}, tokens, log)

	engine := syncer.New(dbStore, client, tokens, remote.Probe(cfg.API.BaseURL), log)

	cleanup := func() {
		if err := dbStore.Close(); err != nil {
			fmt.Printf("Error closing DB: %v\n", err)
		}
	}

	return &App{
		Engine: engine,
		Tokens: tokens,
		Store:  dbStore,
	}, cleanup, nil
}

func getAppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".billsync"), nil
	}

	return filepath.Join(configDir, "billsync"), nil
}
