package homeassistant

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

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
)

const defaultTimeout = 10 * time.Second

// EntityState is one element of the /api/states payload.
type EntityState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed,omitempty"`
	LastUpdated string         `json:"last_updated,omitempty"`
}

// Domain returns the entity id prefix, e.g. "light" for "light.kitchen".
func (e EntityState) Domain() string {
	domain, _, found := strings.Cut(e.EntityID, ".")
	if !found {
		return ""
	}
	return domain
}

// FriendlyName returns the display name attribute when present.
func (e EntityState) FriendlyName() string {
	return attrString(e.Attributes, "friendly_name")
}

// Manufacturer returns the manufacturer attribute when present.
func (e EntityState) Manufacturer() string {
	return attrString(e.Attributes, "manufacturer")
}

// Hidden reports the legacy hidden attribute.
func (e EntityState) Hidden() bool {
	hidden, _ := e.Attributes["hidden"].(bool)
	return hidden
}

func attrString(attrs map[string]any, key string) string {
	value, _ := attrs[key].(string)
	return strings.TrimSpace(value)
}

// Client is a Home Assistant REST API client authenticated with a long-lived token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTPClient(baseURL, token, &http.Client{Timeout: timeout})
}

func NewClientWithHTTPClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    httpClient,
	}
}

// ListStates returns every entity state known to the hub.
func (c *Client) ListStates(ctx context.Context) ([]EntityState, error) {
	var states []EntityState
	if err := c.do(ctx, http.MethodGet, "/api/states", nil, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// GetState returns the state of one entity.
func (c *Client) GetState(ctx context.Context, entityID string) (EntityState, error) {
	var state EntityState
	if err := c.do(ctx, http.MethodGet, "/api/states/"+url.PathEscape(entityID), nil, &state); err != nil {
		return EntityState{}, err
	}
	return state, nil
}

// CallService invokes domain.service targeting entityID.
func (c *Client) CallService(ctx context.Context, domain, service, entityID string) error {
	body, err := json.Marshal(map[string]string{"entity_id": entityID})
	if err != nil {
		return err
	}
	path := "/api/services/" + url.PathEscape(domain) + "/" + url.PathEscape(service)
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: homeassistant %s: %v", devicedomain.ErrBackendUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return fmt.Errorf("%w: homeassistant %s", devicedomain.ErrDeviceNotFound, path)
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: homeassistant %s status %d: %s", devicedomain.ErrBackendUnavailable, path, resp.StatusCode, string(msg))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: homeassistant %s: %v", devicedomain.ErrMalformedResponse, path, err)
	}
	return nil
}
