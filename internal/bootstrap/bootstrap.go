package bootstrap

import (
	"log/slog"

	"github.com/kirillkom/vlm-transcriber/internal/config"
	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
	"github.com/kirillkom/vlm-transcriber/internal/core/ports"
	"github.com/kirillkom/vlm-transcriber/internal/core/usecase"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/export"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/llm/openai"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/resilience"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/restructure"
	"github.com/kirillkom/vlm-transcriber/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Processor ports.BatchProcessor
	Exporter  ports.ResultExporter
}

// New wires the pipeline. Progress defaults to the logging reporter when
// nil; the CLI passes its own console reporter.
func New(cfg config.Config, logger *slog.Logger, progress ports.ProgressReporter) *App {
	if logger == nil {
		logger = logging.NewJSONLogger("vlm-transcriber", cfg.LogLevel)
	}
	if progress == nil {
		progress = logging.NewProgressReporter(logger)
	}

	retryCfg := resilience.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxRetries
	retryCfg.Delay = cfg.RetryDelay
	retryCfg.BreakerEnabled = cfg.BreakerEnabled
	executor := resilience.NewExecutor(retryCfg)

	extractor := openai.New(openai.Config{
		APIKey:      cfg.VLMAPIKey,
		BaseURL:     cfg.VLMBaseURL,
		Model:       cfg.VLMModel,
		Temperature: float32(cfg.VLMTemperature),
		Timeout:     cfg.VLMTimeout,
	}, executor, logger)

	limits := domain.BatchLimits{
		MaxBatchSize:      cfg.MaxBatchSize,
		MaxFileSize:       cfg.MaxFileSizeBytes,
		AllowedExtensions: cfg.AllowedExtensions,
	}

	processor := usecase.NewProcessBatchUseCase(
		extractor,
		restructure.NewFormatter(logger),
		progress,
		limits,
		logger,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Processor: processor,
		Exporter:  export.NewService(logger),
	}
}
