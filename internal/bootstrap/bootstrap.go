package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpadapter "github.com/kirillkom/lab-assistant/internal/adapters/http"
	"github.com/kirillkom/lab-assistant/internal/config"
	"github.com/kirillkom/lab-assistant/internal/contract"
	"github.com/kirillkom/lab-assistant/internal/core/ports"
	"github.com/kirillkom/lab-assistant/internal/core/usecase"
	"github.com/kirillkom/lab-assistant/internal/core/workflow"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/labapi"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/parsing"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/lab-assistant/internal/observability/metrics"
)

const serviceName = "lab-api"

// App is the wired lab service.
type App struct {
	Config config.Config

	ExtractUC  ports.ExperimentExtractor
	GenerateUC ports.ReportGenerator
	Contract   *contract.Contract
	Metrics    *metrics.HTTPServerMetrics
	Executor   *resilience.Executor

	logger *slog.Logger
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	apiContract, err := contract.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}

	var (
		httpMetrics        *metrics.HTTPServerMetrics
		extractionObserver ports.ExtractionObserver
		generationObserver ports.GenerationObserver
		execOpts           = []resilience.Option{resilience.WithLogger(logger)}
	)
	if cfg.MetricsEnabled {
		httpMetrics = metrics.NewHTTPServerMetrics(serviceName)
		pipeline := metrics.NewPipelineMetrics(serviceName, httpMetrics.Registerer())
		extractionObserver = pipeline
		generationObserver = pipeline
		execOpts = append(execOpts, resilience.WithStateObserver(pipeline.ObserveBreakerState))
	}

	var storage ports.ObjectStorage
	if cfg.UploadArchivePath != "" {
		fs, err := localfs.New(cfg.UploadArchivePath)
		if err != nil {
			return nil, fmt.Errorf("init upload archive: %w", err)
		}
		storage = fs
	}

	executor := resilience.NewExecutor(resilienceConfig(cfg), execOpts...)
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, executor)

	extractUC := usecase.NewExtractExperimentsUseCase(
		extractor.Default(),
		parsing.NewSplitter(cfg.PreviewChars),
		storage,
		extractionObserver,
		cfg.UploadMaxBytes,
	)
	generateUC := usecase.NewGenerateReportUseCase(ollama.NewReportWriter(ollamaClient), generationObserver)

	logger.Info("service_wired",
		"ollama_url", cfg.OllamaURL,
		"model", cfg.OllamaGenModel,
		"archive", cfg.UploadArchivePath != "",
		"metrics", cfg.MetricsEnabled,
	)

	return &App{
		Config:     cfg,
		ExtractUC:  extractUC,
		GenerateUC: generateUC,
		Contract:   apiContract,
		Metrics:    httpMetrics,
		Executor:   executor,
		logger:     logger,
	}, nil
}

// Handler builds the full HTTP stack for the service.
func (a *App) Handler() http.Handler {
	opts := []httpadapter.Option{
		httpadapter.WithContract(a.Contract),
		httpadapter.WithLogger(a.logger),
	}
	if a.Metrics != nil {
		opts = append(opts, httpadapter.WithMetrics(a.Metrics))
	}
	return httpadapter.NewRouter(a.Config, a.ExtractUC, a.GenerateUC, opts...).Handler()
}

func resilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	if cfg.LLMRetryMaxAttempts > 0 {
		rc.RetryMaxAttempts = cfg.LLMRetryMaxAttempts
	}
	if cfg.LLMRetryInitialBackoff > 0 {
		rc.RetryInitialBackoff = cfg.LLMRetryInitialBackoff
	}
	rc.BreakerEnabled = cfg.LLMBreakerEnabled
	if cfg.LLMBreakerOpenTimeout > 0 {
		rc.BreakerOpenTimeout = cfg.LLMBreakerOpenTimeout
	}
	if cfg.LLMBreakerMinRequests > 0 {
		rc.BreakerMinRequests = uint32(cfg.LLMBreakerMinRequests)
	}
	if cfg.LLMBreakerFailureRatio > 0 {
		rc.BreakerFailureRatio = cfg.LLMBreakerFailureRatio
	}
	return rc
}

// Client is the wired terminal client: the workflow controller in front of
// the lab service.
type Client struct {
	Config     config.ClientConfig
	Controller *workflow.Controller
	API        *labapi.Client
}

func NewClient(cfg config.ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	api := labapi.New(cfg.APIBaseURL, nil)
	return &Client{
		Config:     cfg,
		Controller: workflow.NewController(api, logger),
		API:        api,
	}
}
