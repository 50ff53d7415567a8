package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"aigist/internal/app"
	"aigist/internal/config"
	"aigist/internal/domain"
	"aigist/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/aigist/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	// Log lines would tear the alternate screen apart, so the console runs silent.
	logger := log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		stdlog.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			stdlog.Fatalf("read %s: %v", path, err)
		}
		res, err := a.Engine.IngestDocument(ctx, domain.FileRequest{
			Filename: filepath.Base(path),
			Content:  string(data),
		})
		if err != nil {
			stdlog.Fatalf("ingest %s: %v", path, err)
		}
		fmt.Printf("Indexed %s (%d passages)\n", res.Title, res.ChunkCount)
	}

	m := tui.New(a.Engine)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		stdlog.Fatal(err)
	}
}
