// Package contract holds the HTTP contract shared by the lab service and its
// client, and validates traffic against it.
package contract

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var documentYAML []byte

// ErrUnknownRoute marks requests whose method and path the contract does
// not describe.
var ErrUnknownRoute = errors.New("route not in contract")

type Contract struct {
	doc *openapi3.T
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(documentYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi contract: %w", err)
	}
	return &Contract{doc: doc}, nil
}

func (c *Contract) Document() *openapi3.T {
	return c.doc
}

// JSON renders the contract for GET /openapi.json.
func (c *Contract) JSON() ([]byte, error) {
	return c.doc.MarshalJSON()
}

func (c *Contract) route(method, path string) (*routers.Route, error) {
	item := c.doc.Paths.Find(path)
	if item == nil {
		return nil, routers.ErrPathNotFound
	}
	op := item.GetOperation(method)
	if op == nil {
		return nil, routers.ErrMethodNotAllowed
	}
	return &routers.Route{
		Spec:      c.doc,
		Path:      path,
		PathItem:  item,
		Method:    method,
		Operation: op,
	}, nil
}

// ValidateRequest checks r against the operation it targets. Only JSON
// bodies are checked against their schema; multipart uploads are checked
// for route and content type. The body is restored after reading.
func (c *Contract) ValidateRequest(ctx context.Context, r *http.Request) error {
	input, err := c.requestInput(r)
	if err != nil {
		return err
	}
	return openapi3filter.ValidateRequest(ctx, input)
}

// ValidateResponse checks a recorded response for the request that produced it.
func (c *Contract) ValidateResponse(ctx context.Context, r *http.Request, status int, header http.Header, body []byte) error {
	input, err := c.requestInput(r)
	if err != nil {
		return err
	}
	return openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 status,
		Header:                 header,
		Body:                   io.NopCloser(bytes.NewReader(body)),
	})
}

func (c *Contract) requestInput(r *http.Request) (*openapi3filter.RequestValidationInput, error) {
	route, err := c.route(r.Method, r.URL.Path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", r.Method, r.URL.Path, ErrUnknownRoute, err)
	}

	opts := &openapi3filter.Options{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		opts.ExcludeRequestBody = true
		if route.Operation.RequestBody != nil && route.Operation.RequestBody.Value != nil {
			if route.Operation.RequestBody.Value.GetMediaType(mediaType) == nil {
				return nil, fmt.Errorf("%s %s: unsupported content type %q", r.Method, r.URL.Path, mediaType)
			}
		}
	}

	return &openapi3filter.RequestValidationInput{
		Request: r,
		Route:   route,
		Options: opts,
	}, nil
}
