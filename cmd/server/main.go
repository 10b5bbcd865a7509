package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"fleetdesk/internal/config"
	"fleetdesk/internal/export"
	"fleetdesk/internal/extractor"
	_ "fleetdesk/internal/extractor/gemini"
	_ "fleetdesk/internal/extractor/openai"
	"fleetdesk/internal/handler"
	"fleetdesk/internal/ocr/textract"
	"fleetdesk/internal/pipeline"
	"fleetdesk/internal/port"
	"fleetdesk/internal/repository/postgres"
	"fleetdesk/internal/router"
	"fleetdesk/internal/rules"
	"fleetdesk/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewSubmissionRepo(db)

	tables, err := loadTables(&cfg.Lookups)
	if err != nil {
		return fmt.Errorf("failed to load lookup tables: %w", err)
	}

	fieldExtractor, err := buildExtractor(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	var tableExtractor port.TableExtractor
	if cfg.OCR.AccessKey != "" {
		tableExtractor, err = textract.NewClient(&cfg.OCR)
		if err != nil {
			return fmt.Errorf("failed to initialize Textract client: %w", err)
		}
	} else {
		log.Println("OCR credentials not configured; document uploads disabled")
	}

	pipe := pipeline.New(fieldExtractor, tables, pipeline.Options{
		AgentTimeout: cfg.Pipeline.AgentTimeout,
		MaxRetries:   cfg.Pipeline.MaxRetries,
	})

	bookingSvc := service.NewBookingService(
		pipe, tableExtractor, repo,
		export.NewCSVSink(), export.NewXLSXSink(),
		service.Options{
			SubmissionTimeout: cfg.Pipeline.SubmissionTimeout,
			MaxUploadBytes:    cfg.OCR.MaxFileSizeMB << 20,
		},
	)

	submissionH := handler.NewSubmissionHandler(bookingSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(submissionH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildExtractor assembles the provider chain: primary first, secondary as
// the circuit-breaker fallback. Missing API keys leave the pipeline in
// degraded deterministic mode rather than failing startup.
func buildExtractor(cfg *config.ExtractorConfig) (port.FieldExtractor, error) {
	if cfg.Primary.APIKey == "" {
		log.Println("no extractor API key configured; running in degraded mode")
		return nil, nil
	}

	primary, err := extractor.NewExtractor(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	chain := []port.FieldExtractor{primary}
	names := []string{cfg.Primary.Provider}
	if sec := cfg.SecondaryConfig(); sec != nil && sec.APIKey != "" {
		secondary, err := extractor.NewExtractor(sec)
		if err != nil {
			return nil, err
		}
		chain = append(chain, secondary)
		names = append(names, sec.Provider)
	}
	return extractor.NewFallbackExtractor(chain, names), nil
}

func loadTables(cfg *config.LookupConfig) (*rules.Tables, error) {
	if cfg.CityFile == "" && cfg.VehicleFile == "" && cfg.CorporateFile == "" && cfg.DispatchFile == "" {
		return rules.DefaultTables(), nil
	}
	return rules.LoadTables(cfg.CityFile, cfg.VehicleFile, cfg.CorporateFile, cfg.DispatchFile)
}
