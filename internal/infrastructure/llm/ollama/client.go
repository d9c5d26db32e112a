package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/ports"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

// New returns an Ollama client. A nil executor runs every call once.
func New(baseURL, genModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

var _ ports.ReportWriter = (*ReportWriter)(nil)

type ReportWriter struct {
	client *Client
}

func NewReportWriter(client *Client) *ReportWriter {
	return &ReportWriter{client: client}
}

func (w *ReportWriter) WriteReport(ctx context.Context, experimentText string) (domain.Report, error) {
	raw, err := w.client.generateJSON(ctx, buildReportPrompt(experimentText))
	if err != nil {
		return domain.Report{}, err
	}
	return parseReport(raw), nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}
