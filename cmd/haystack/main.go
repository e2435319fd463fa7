package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haystack-game/haystack-client/internal/config"
	"github.com/haystack-game/haystack-client/internal/logger"
	"github.com/haystack-game/haystack-client/internal/network/client"
	"github.com/haystack-game/haystack-client/internal/session"
	"github.com/haystack-game/haystack-client/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	serverURL := flag.String("server", "", "websocket URL of the room server")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	sessionPath := cfg.Session.Path
	if sessionPath == "" {
		var err error
		sessionPath, err = session.DefaultPath()
		if err != nil {
			log.Fatalf("failed to locate the session file: %v", err)
		}
	}
	store := session.NewStore(sessionPath)

	stored, err := store.Load()
	if err != nil {
		logger.LogError("ignoring unreadable session file: %v", err)
	}
	if stored == nil && cfg.Session.PlayerName != "" {
		stored = &session.Session{PlayerName: cfg.Session.PlayerName}
	}

	transport := client.NewClient(cfg.Server.URL)
	model := ui.NewModel(transport, store, stored)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("error running the client: %v", err)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config %s: %v", path, err)
	}
	return cfg
}
