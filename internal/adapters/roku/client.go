package roku

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
)

const defaultTimeout = 10 * time.Second

// AppTypeLaunchable marks channel entries that can be launched.
const AppTypeLaunchable = "appl"

// App is one entry of the ECP app listing.
type App struct {
	ID      string `xml:"id,attr"`
	Type    string `xml:"type,attr"`
	Version string `xml:"version,attr"`
	Name    string `xml:",chardata"`
}

type appsResponse struct {
	XMLName xml.Name
	Apps    []App `xml:"app"`
}

type activeAppResponse struct {
	XMLName xml.Name
	App     App `xml:"app"`
}

// Client talks to a Roku player over the External Control Protocol.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
	}
}

// ListApps returns every installed channel reported by /query/apps.
func (c *Client) ListApps(ctx context.Context) ([]App, error) {
	var payload appsResponse
	if err := c.query(ctx, "/query/apps", &payload); err != nil {
		return nil, err
	}
	if payload.XMLName.Local != "apps" {
		return nil, fmt.Errorf("%w: roku app listing root is <%s>", devicedomain.ErrMalformedResponse, payload.XMLName.Local)
	}
	for i := range payload.Apps {
		payload.Apps[i].Name = strings.TrimSpace(payload.Apps[i].Name)
	}
	return payload.Apps, nil
}

// ActiveApp returns the app in the foreground. The home screen has an empty ID.
func (c *Client) ActiveApp(ctx context.Context) (App, error) {
	var payload activeAppResponse
	if err := c.query(ctx, "/query/active-app", &payload); err != nil {
		return App{}, err
	}
	if payload.XMLName.Local != "active-app" {
		return App{}, fmt.Errorf("%w: roku active app root is <%s>", devicedomain.ErrMalformedResponse, payload.XMLName.Local)
	}
	payload.App.Name = strings.TrimSpace(payload.App.Name)
	return payload.App, nil
}

// LaunchApp starts the channel with appID.
func (c *Client) LaunchApp(ctx context.Context, appID string) error {
	return c.post(ctx, "/launch/"+url.PathEscape(appID))
}

// Keypress sends one remote-control key.
func (c *Client) Keypress(ctx context.Context, key string) error {
	return c.post(ctx, "/keypress/"+url.PathEscape(key))
}

func (c *Client) query(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: roku %s: %v", devicedomain.ErrBackendUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: roku %s status %d: %s", devicedomain.ErrBackendUnavailable, path, resp.StatusCode, string(body))
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: roku %s: %v", devicedomain.ErrMalformedResponse, path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: roku %s: %v", devicedomain.ErrBackendUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: roku %s status %d: %s", devicedomain.ErrBackendUnavailable, path, resp.StatusCode, string(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
