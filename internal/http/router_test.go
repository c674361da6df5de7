package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
	"github.com/ofuangka/smart/internal/http/handlers"
	"github.com/ofuangka/smart/internal/model"
)

type fakeService struct {
	listErr  error
	stateErr error
	block    bool
	calls    []string
}

func (f *fakeService) ListDevices(context.Context) ([]model.DeviceView, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []model.DeviceView{{ID: "sharp", Platform: model.PlatformLIRC, Name: "TV", Manufacturer: "Sharp", Actions: []string{"Mute"}}}, nil
}

func (f *fakeService) GetState(ctx context.Context, id string) (model.State, error) {
	if f.block {
		<-ctx.Done()
		return model.State{}, fmt.Errorf("roku /query/active-app: %w", ctx.Err())
	}
	if f.stateErr != nil {
		return model.State{}, f.stateErr
	}
	return model.State{ID: id, State: "on"}, nil
}

func (f *fakeService) PerformAction(_ context.Context, id, action string) (model.ActionResult, error) {
	f.calls = append(f.calls, id+":"+action)
	if id == "ghost" {
		return model.ActionResult{}, fmt.Errorf("device %q: %w", id, devicedomain.ErrDeviceNotFound)
	}
	return model.ActionResult{ID: id, Action: action}, nil
}

type fakePoller struct{ triggered int }

func (p *fakePoller) TriggerRefresh() { p.triggered++ }

type fixedStatus time.Time

func (s fixedStatus) LastRefresh() time.Time { return time.Time(s) }

func newTestRouter(svc *fakeService, p *fakePoller) http.Handler {
	return newTestRouterWithTimeout(svc, p, time.Second)
}

func newTestRouterWithTimeout(svc *fakeService, p *fakePoller, timeout time.Duration) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	at := fixedStatus(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	return NewRouter(handlers.New(svc, p, at, "v1.2.3", logger), timeout)
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeService{}, &fakePoller{}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])
	assert.Equal(t, "2026-10-19T12:00:00Z", body["last_refresh"])
}

func TestListDevices(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeService{}, &fakePoller{}), http.MethodGet, "/devices")
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "sharp", items[0].(map[string]any)["id"])
}

func TestPerformActionRoutesParams(t *testing.T) {
	svc := &fakeService{}
	rec, body := do(t, newTestRouter(svc, &fakePoller{}), http.MethodPost, "/devices/light.kitchen/actions/TurnOn")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "light.kitchen", body["id"])
	assert.Equal(t, "TurnOn", body["action"])
	assert.Equal(t, []string{"light.kitchen:TurnOn"}, svc.calls)
}

func TestGetState(t *testing.T) {
	rec, body := do(t, newTestRouter(&fakeService{}, &fakePoller{}), http.MethodGet, "/devices/roku/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "roku", body["id"])
	assert.Equal(t, "on", body["state"])
}

func TestRefreshTriggersPoller(t *testing.T) {
	p := &fakePoller{}
	rec, _ := do(t, newTestRouter(&fakeService{}, p), http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, p.triggered)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{devicedomain.ErrDeviceNotFound, http.StatusNotFound, "not_found"},
		{devicedomain.ErrRetryExhausted, http.StatusTooManyRequests, "retry_exhausted"},
		{devicedomain.ErrUnsupportedOperation, http.StatusBadRequest, "unsupported_operation"},
		{devicedomain.ErrAllBackendsUnavailable, http.StatusBadGateway, "backend_unavailable"},
		{devicedomain.ErrBackendUnavailable, http.StatusBadGateway, "backend_unavailable"},
		{devicedomain.ErrMalformedResponse, http.StatusBadGateway, "backend_unavailable"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{devicedomain.ErrUnknownPlatform, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &fakeService{stateErr: fmt.Errorf("wrapped: %w", tc.err)}
			rec, body := do(t, newTestRouter(svc, &fakePoller{}), http.MethodGet, "/devices/x/state")
			assert.Equal(t, tc.status, rec.Code)
			envelope := body["error"].(map[string]any)
			assert.Equal(t, tc.code, envelope["code"])
		})
	}
}

func TestMalformedUpstreamIsBadGateway(t *testing.T) {
	svc := &fakeService{stateErr: fmt.Errorf("%w: homeassistant /api/states/light.x: unexpected EOF", devicedomain.ErrMalformedResponse)}
	rec, body := do(t, newTestRouter(svc, &fakePoller{}), http.MethodGet, "/devices/light.x/state")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "backend_unavailable", body["error"].(map[string]any)["code"])
}

func TestHandlerDeadlineIsGatewayTimeout(t *testing.T) {
	svc := &fakeService{block: true}
	rec, body := do(t, newTestRouterWithTimeout(svc, &fakePoller{}, 20*time.Millisecond), http.MethodGet, "/devices/roku/state")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "timeout", body["error"].(map[string]any)["code"])
}

func TestListDevicesAllBackendsDown(t *testing.T) {
	svc := &fakeService{listErr: devicedomain.ErrAllBackendsUnavailable}
	rec, _ := do(t, newTestRouter(svc, &fakePoller{}), http.MethodGet, "/devices")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRecoverJSON(t *testing.T) {
	h := RecoverJSON(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec, body := do(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", body["error"].(map[string]any)["code"])
}
