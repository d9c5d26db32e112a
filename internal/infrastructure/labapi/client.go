// Package labapi is the HTTP client for the lab service's extract and
// generate operations.
package labapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/workflow"
)

const (
	uploadPath   = "/upload-file"
	generatePath = "/generate"

	opExtract  = "extract experiments"
	opGenerate = "generate report"

	maxErrorBody = 64 << 10
)

var _ workflow.Boundary = (*Client)(nil)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client addressed at baseURL. A nil httpClient gets a client
// without a timeout; calls are bounded by their context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ExtractExperiments(ctx context.Context, file domain.SourceFile) ([]domain.Experiment, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransportFailure, opExtract, err)
	}

	var response struct {
		Experiments []domain.Experiment `json:"experiments"`
	}
	if err := c.post(ctx, uploadPath, contentType, body, &response, opExtract); err != nil {
		return nil, err
	}
	if response.Experiments == nil {
		response.Experiments = []domain.Experiment{}
	}
	return response.Experiments, nil
}

func (c *Client) GenerateReport(ctx context.Context, experimentText string) (domain.Report, error) {
	payload, err := json.Marshal(map[string]string{"experiment_text": experimentText})
	if err != nil {
		return domain.Report{}, domain.WrapError(domain.ErrTransportFailure, opGenerate, err)
	}

	var report domain.Report
	if err := c.post(ctx, generatePath, "application/json", bytes.NewReader(payload), &report, opGenerate); err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

func multipartBody(file domain.SourceFile) (io.Reader, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return domain.WrapError(domain.ErrTransportFailure, operation, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTransportFailure, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrTransportFailure, operation, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError turns a non-success response into a BoundaryError. Detail is
// taken from a JSON {"detail": "..."} body; anything else leaves it empty.
func statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.BoundaryError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Detail:     decodeDetail(raw),
	}
}

func decodeDetail(raw []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
