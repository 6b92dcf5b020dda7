package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/jamdeck/internal/backend"
	"github.com/jask/jamdeck/internal/config"
	"github.com/jask/jamdeck/internal/database"
	"github.com/jask/jamdeck/internal/database/repository"
	"github.com/jask/jamdeck/internal/service"
	"github.com/jask/jamdeck/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	migrations := os.Getenv("JAMDECK_MIGRATIONS")
	if migrations == "" {
		migrations = "internal/database/migrations"
	}
	if err := database.RunMigrations(cfg.Database.Path, migrations); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	historyRepo := repository.NewSessionRepo(db)
	client := backend.NewClient(cfg.Backend.BaseURL)

	app := tui.New(ctx, cfg, tui.Services{
		Backend:   client,
		Conductor: &service.Conductor{Backend: client, History: historyRepo},
		Recall:    &service.Recall{History: historyRepo},
		History:   historyRepo,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}
