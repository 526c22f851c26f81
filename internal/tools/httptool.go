package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPRequestTool makes HTTP requests and returns URL, status, and body text.
// It backs free-form questions that need a page the other tools do not cover.
type HTTPRequestTool struct {
	Client *http.Client
}

// Name returns the tool name.
func (t HTTPRequestTool) Name() string {
	return "http_request"
}

// Description returns the tool description for the model.
func (t HTTPRequestTool) Description() string {
	return "Make an HTTP request and return URL, status, and body"
}

// Schema returns the JSON schema for http_request args.
func (t HTTPRequestTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method: GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "Absolute HTTP or HTTPS URL",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Optional request body",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Optional headers as key/value pairs",
			},
		},
		"required": []string{"method", "url"},
	}
}

// Execute performs an HTTP request and returns response text.
func (t HTTPRequestTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	method, err := stringArg(args, "method")
	if err != nil {
		return "", err
	}
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions:
	default:
		return "", fmt.Errorf("unsupported method %q", method)
	}

	rawURL, err := stringArg(args, "url")
	if err != nil {
		return "", err
	}
	body, err := optionalStringArg(args, "body", "")
	if err != nil {
		return "", err
	}
	headers, err := parseHeaderArgs(args)
	if err != nil {
		return "", err
	}

	if t.Client == nil {
		return "", errors.New("http client is required")
	}

	var requestBody io.Reader
	if body != "" {
		requestBody = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, requestBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Accept", "application/json, text/markdown, text/plain")
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	output := fmt.Sprintf("URL: %s\nStatus: %s\n\n%s", req.URL.String(), resp.Status, string(respBody))
	return Truncate(output), nil
}

func parseHeaderArgs(args map[string]any) (map[string]string, error) {
	rawHeaders, ok := args["headers"]
	if !ok {
		return map[string]string{}, nil
	}

	obj, ok := rawHeaders.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an object", "headers")
	}
	headers := make(map[string]string, len(obj))
	for key, rawValue := range obj {
		value, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("header %q must be a string", key)
		}
		headers[key] = value
	}
	return headers, nil
}
