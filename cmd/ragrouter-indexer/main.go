package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"ragrouter/internal/config"
	"ragrouter/internal/embedding"
	"ragrouter/internal/index"
	"ragrouter/internal/ingest"
	"ragrouter/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, docsPath, outPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragrouter/config.yaml if not provided)")
	flag.StringVar(&docsPath, "docs", "", "Document folder to ingest (overrides config)")
	flag.StringVar(&outPath, "out", "", "Index artifact path to write (overrides config)")
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
	if docsPath == "" {
		docsPath = cfg.Docs.Path
	}
	if outPath == "" {
		outPath = cfg.Index.Path
	}

	logger := logging.New(cfg.Logging)

	pipeline, err := ingest.NewPipeline(cfg.Docs, logger)
	if err != nil {
		logger.Fatal("failed to initialize ingestion pipeline", "error", err)
	}
	chunks := pipeline.Ingest(docsPath)
	if len(chunks) == 0 {
		logger.Warn("nothing to index", "folder", docsPath)
		return
	}

	embedder, err := embedding.NewClient(cfg.Embedder)
	if err != nil {
		logger.Fatal("failed to initialize embedder", "error", err)
	}

	logger.Info("building index", "chunks", len(chunks), "model", cfg.Embedder.Model)
	ix, err := index.Build(context.Background(), chunks, embedder)
	if err != nil {
		logger.Fatal("index build failed", "error", err)
	}
	if err := ix.Save(outPath); err != nil {
		logger.Fatal("index save failed", "path", outPath, "error", err)
	}
	logger.Info("index written", "path", outPath, "chunks", ix.Len(), "dimension", ix.Dimension())
}
