package main

import (
	"context"
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"ragrouter/internal/classify"
	"ragrouter/internal/config"
	"ragrouter/internal/domain"
	"ragrouter/internal/embedding"
	"ragrouter/internal/generation"
	"ragrouter/internal/index"
	"ragrouter/internal/logging"
	"ragrouter/internal/orchestrator"
	"ragrouter/internal/ragchain"
	"ragrouter/internal/retrieval"
	"ragrouter/internal/tui"
)

// askAdapter bridges the TUI port onto the orchestrator.
type askAdapter struct {
	orch *orchestrator.Orchestrator
}

func (a *askAdapter) Ask(question string) domain.Result {
	return a.orch.Handle(context.Background(), question, uuid.NewString())
}

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragrouter/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	embedder, err := embedding.NewClient(cfg.Embedder)
	if err != nil {
		logger.Fatal("failed to initialize embedder", "error", err)
	}
	handle, err := index.Open(cfg.Index.Path, cfg.Embedder.Model)
	if err != nil {
		logger.Fatal("failed to load index", "path", cfg.Index.Path, "error", err)
	}
	engine, err := retrieval.NewEngine(embedder, handle, cfg.Retrieval, logger)
	if err != nil {
		logger.Fatal("failed to initialize retrieval engine", "error", err)
	}
	gen, err := generation.NewOpenAIGenerator(cfg.Generator)
	if err != nil {
		logger.Fatal("failed to initialize generator", "error", err)
	}
	genService := generation.NewService(gen, cfg.Generator, logger)

	var classifier domain.Classifier
	switch cfg.Classifier.Type {
	case "llm", "":
		classifier = classify.NewLLMClassifier(gen, logger)
	case "keyword":
		classifier = classify.NewKeywordClassifier(nil)
	default:
		logger.Fatal("unknown classifier type", "type", cfg.Classifier.Type)
	}

	chain := ragchain.NewChain(engine, genService, logger)
	orch := orchestrator.New(classifier, chain, genService, logger)

	program := tea.NewProgram(tui.New(&askAdapter{orch: orch}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Fatal("tui exited with error", "error", err)
	}
}
