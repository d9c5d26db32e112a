package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func mustLoad(t *testing.T) *Contract {
	t.Helper()
	c, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func TestContractServesJSON(t *testing.T) {
	c := mustLoad(t)
	raw, err := c.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("contract is not valid json: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	for _, p := range []string{"/upload-file", "/generate", "/healthz"} {
		if _, ok := paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
}

func TestValidateGenerateRequest(t *testing.T) {
	c := mustLoad(t)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"experiment_text":"Full B text"}`},
		{name: "missing field", body: `{"text":"x"}`, wantErr: true},
		{name: "wrong type", body: `{"experiment_text":3}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			err := c.ValidateRequest(context.Background(), req)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateRequest() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateRequestRestoresBody(t *testing.T) {
	c := mustLoad(t)
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"experiment_text":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	if err := c.ValidateRequest(context.Background(), req); err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	var payload struct {
		ExperimentText string `json:"experiment_text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Fatalf("body not restored: %v", err)
	}
	if payload.ExperimentText != "abc" {
		t.Fatalf("unexpected body %+v", payload)
	}
}

func TestValidateRequestRejectsUnknownRoutes(t *testing.T) {
	c := mustLoad(t)
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/nope", nil),
		httptest.NewRequest(http.MethodGet, "/generate", nil),
	} {
		if err := c.ValidateRequest(context.Background(), req); !errors.Is(err, ErrUnknownRoute) {
			t.Fatalf("expected ErrUnknownRoute for %s %s, got %v", req.Method, req.URL.Path, err)
		}
	}
}

func TestValidateUploadContentType(t *testing.T) {
	c := mustLoad(t)

	req := httptest.NewRequest(http.MethodPost, "/upload-file", bytes.NewReader([]byte("x")))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=abc")
	if err := c.ValidateRequest(context.Background(), req); err != nil {
		t.Fatalf("multipart upload rejected: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/upload-file", bytes.NewReader([]byte("x")))
	req.Header.Set("Content-Type", "text/plain")
	if err := c.ValidateRequest(context.Background(), req); err == nil {
		t.Fatalf("expected content type error")
	}
}

func TestValidateResponse(t *testing.T) {
	c := mustLoad(t)
	req := httptest.NewRequest(http.MethodPost, "/upload-file", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=abc")
	header := http.Header{"Content-Type": []string{"application/json"}}

	ok := []byte(`{"experiments":[{"id":0,"title":"Experiment 1","preview":"p","text":"t"}]}`)
	if err := c.ValidateResponse(context.Background(), req, http.StatusOK, header, ok); err != nil {
		t.Fatalf("valid response rejected: %v", err)
	}

	detail := []byte(`{"detail":"No experiments found."}`)
	if err := c.ValidateResponse(context.Background(), req, http.StatusBadRequest, header, detail); err != nil {
		t.Fatalf("error response rejected: %v", err)
	}

	bad := []byte(`{"experiments":[{"title":"no id"}]}`)
	if err := c.ValidateResponse(context.Background(), req, http.StatusOK, header, bad); err == nil {
		t.Fatalf("expected schema error")
	}
}
