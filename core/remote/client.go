package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Collections of the remote API.
const (
	CollectionEvents     = "events"
	CollectionPlaces     = "places"
	CollectionOrganizers = "organizers"
)

const maxBodySize = 1 << 20

// Category is one entry of the remote category vocabulary.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to the remote event catalog REST API.
type Client struct {
	http    *http.Client
	baseURL string
	orgID   string
	logger  *zap.Logger
}

// NewClient creates a Client. httpClient carries authentication; nil uses a
// plain client with the configured timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout(cfg)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		orgID:   cfg.OrganizationID,
		logger:  logger,
	}
}

func timeout(cfg Config) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

type idResponse struct {
	ID flexID `json:"id"`
}

type namedItem struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type pagination struct {
	Items   []namedItem `json:"items"`
	HasNext bool        `json:"has_next"`
}

// Create posts payload to the organization's collection and returns the new id.
func (c *Client) Create(ctx context.Context, collection string, payload any) (string, error) {
	path := fmt.Sprintf("/organizations/%s/%s", url.PathEscape(c.orgID), collection)
	body, err := c.do(ctx, http.MethodPost, path, payload, http.StatusCreated, http.StatusOK)
	if err != nil {
		return "", err
	}
	var resp idResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create response of %s carries no id", collection)
	}
	return string(resp.ID), nil
}

// Update replaces the entity id of collection with payload.
func (c *Client) Update(ctx context.Context, collection, id string, payload any) error {
	path := fmt.Sprintf("/%s/%s", collection, url.PathEscape(id))
	_, err := c.do(ctx, http.MethodPut, path, payload, http.StatusNoContent, http.StatusOK)
	return err
}

// Delete removes the entity id of collection.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	path := fmt.Sprintf("/%s/%s", collection, url.PathEscape(id))
	_, err := c.do(ctx, http.MethodDelete, path, nil, http.StatusNoContent, http.StatusOK)
	return err
}

// FindByName returns the id of the organization's entity whose name equals
// name exactly.
func (c *Client) FindByName(ctx context.Context, collection, name string) (string, bool, error) {
	path := fmt.Sprintf("/organizations/%s/%s?name=%s", url.PathEscape(c.orgID), collection, url.QueryEscape(name))
	body, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return "", false, err
	}
	var page pagination
	if err := json.Unmarshal(body, &page); err != nil {
		return "", false, fmt.Errorf("failed to decode %s search: %w", collection, err)
	}
	for _, item := range page.Items {
		if item.Name == name {
			return string(item.ID), true, nil
		}
	}
	return "", false, nil
}

// ListCategories loads every page of the category vocabulary.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	for page := 1; ; page++ {
		body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/event-categories?page=%d", page), nil, http.StatusOK)
		if err != nil {
			return nil, err
		}
		var p pagination
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("failed to decode categories page %d: %w", page, err)
		}
		for _, item := range p.Items {
			categories = append(categories, Category{ID: string(item.ID), Name: item.Name})
		}
		if !p.HasNext || len(p.Items) == 0 {
			return categories, nil
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any, expected ...int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Remote request", zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("Remote response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	for _, code := range expected {
		if resp.StatusCode == code {
			return body, nil
		}
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, parseValidation(body)
	}
	return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

type validationBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func parseValidation(body []byte) *ValidationError {
	var vb validationBody
	if err := json.Unmarshal(body, &vb); err != nil {
		return &ValidationError{Detail: strings.TrimSpace(string(body))}
	}
	if len(vb.Errors) > 0 {
		return &ValidationError{Field: vb.Errors[0].Field, Detail: vb.Errors[0].Message}
	}
	if vb.Message != "" {
		return &ValidationError{Detail: vb.Message}
	}
	return &ValidationError{Detail: strings.TrimSpace(string(body))}
}

// flexID accepts numeric and string ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}
