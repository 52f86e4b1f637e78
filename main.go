package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssukssuk/planterm/internal/api"
	"github.com/ssukssuk/planterm/internal/app"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/notify"
	"github.com/ssukssuk/planterm/internal/storage"
	appsync "github.com/ssukssuk/planterm/internal/sync"
	"github.com/ssukssuk/planterm/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "planterm:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	store, err := storage.NewSQLiteStorage(filepath.Join(cfg.DataDir, "planterm.db"))
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer store.Close()

	credentials, err := storage.NewKeyringStorage()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	client := api.NewClient(
		cfg.Server.BaseURL,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
		credentials,
		logger.WithModule("api"),
	)

	reconciler := notify.New(client, store, logger.WithModule("notify"))
	poller := appsync.New(client, reconciler, cfg.Poll, logger.WithModule("sync"))

	root := app.New(client, store, reconciler, poller, logger.WithModule("app"))

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	return nil
}
