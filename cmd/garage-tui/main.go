package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parking-garage/tui/internal/app"
	"github.com/parking-garage/tui/internal/client"
	"github.com/parking-garage/tui/internal/config"
	"github.com/parking-garage/tui/internal/logging"
	"github.com/parking-garage/tui/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "Path to the YAML config file")
	baseURL := flag.String("url", "", "Base URL of the parking-garage backend (overrides config)")
	authMode := flag.String("auth-mode", "", "Credential mode: token, cookie or both (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}
	if *authMode != "" {
		cfg.Auth.Mode = *authMode
	}
	switch cfg.Auth.Mode {
	case "token", "cookie", "both":
	default:
		return fmt.Errorf("invalid auth mode %q (want token, cookie or both)", cfg.Auth.Mode)
	}

	logPath, err := cfg.LogFile()
	if err != nil {
		return err
	}
	log, closeLog, err := logging.New(logPath, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	sessDir, err := cfg.SessionDir()
	if err != nil {
		return err
	}
	store, err := session.NewStore(sessDir)
	if err != nil {
		return err
	}

	bus := session.NewBus()
	httpc := client.New(client.Config{
		BaseURL: cfg.Server.BaseURL,
		Mode:    client.AuthMode(cfg.Auth.Mode),
		Timeout: cfg.Server.Timeout,
		Logger:  log,
	}, store)

	rec := session.NewReconciler(store, bus, cfg.Session.RecheckInterval, log)
	rec.Start(context.Background())
	defer rec.Stop()

	log.Info().
		Str("base_url", cfg.Server.BaseURL).
		Str("auth_mode", cfg.Auth.Mode).
		Str("session_dir", sessDir).
		Msg("starting")

	m := app.New(httpc, store, bus, rec)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
