package roku

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
)

const appsBody = `<?xml version="1.0" encoding="UTF-8" ?>
<apps>
	<app id="31012" type="menu" version="1.9.47">FandangoNOW Movies &amp; TV</app>
	<app id="12" subtype="ndka" type="appl" version="4.2.81179021">Netflix</app>
	<app id="13" subtype="ndka" type="appl" version="11.1.2019120917">Prime Video</app>
</apps>`

func TestListAppsParsesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/query/apps", r.URL.Path)
		_, _ = w.Write([]byte(appsBody))
	}))
	defer srv.Close()

	apps, err := NewClient(srv.URL+"/", time.Second).ListApps(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, App{ID: "12", Type: AppTypeLaunchable, Version: "4.2.81179021", Name: "Netflix"}, apps[1])
	assert.Equal(t, "FandangoNOW Movies & TV", apps[0].Name)
}

func TestListAppsRejectsUnexpectedRoot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<device-info><model-name>Roku Ultra</model-name></device-info>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListApps(context.Background())
	require.ErrorIs(t, err, devicedomain.ErrMalformedResponse)
	assert.ErrorIs(t, err, devicedomain.ErrBackendUnavailable)
}

func TestListAppsReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).ListApps(context.Background())
	require.ErrorIs(t, err, devicedomain.ErrBackendUnavailable)
}

func TestActiveApp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/active-app", r.URL.Path)
		_, _ = w.Write([]byte(`<active-app><app id="12" type="appl" version="4.2">Netflix</app></active-app>`))
	}))
	defer srv.Close()

	app, err := NewClient(srv.URL, time.Second).ActiveApp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12", app.ID)
	assert.Equal(t, "Netflix", app.Name)
}

func TestControlEndpoints(t *testing.T) {
	paths := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.LaunchApp(context.Background(), "12"))
	require.NoError(t, client.Keypress(context.Background(), "Play"))
	assert.Equal(t, "/launch/12", <-paths)
	assert.Equal(t, "/keypress/Play", <-paths)
}
