package app

import (
	"context"
	"ctfrank/internal/apperr"
	"ctfrank/internal/config"
	"ctfrank/internal/ranking"
	"ctfrank/internal/telemetry"
	"ctfrank/internal/tracker"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const teamPage = `<html><body>
<div id="rating_2024"><p>
<b><a href="/stats/2024">42</a></b><br>
Country place: <a href="/stats/2024/NO">7</a>
</p></div>
</body></html>`

const teamAPI = `{"rating": {"2024": {"rating_place": 42, "country_place": 7}}}`

func testConfig(t *testing.T, site, webhook string) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom("", map[string]string{
		"CTFRANK_DATABASE_URL": filepath.Join(t.TempDir(), "history.db"),
		"CTFRANK_WEBHOOK_URL":  webhook,
		"CTFRANK_BASE_URL":     site,
		"CTFRANK_SEASON":       "2024",
		"CTFRANK_HTTP_TIMEOUT": "5s",
	}, time.Now())
	require.NoError(t, err)
	return cfg
}

func TestOpenAndRun(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/teams/"):
			w.Write([]byte(teamAPI))
		case strings.HasPrefix(r.URL.Path, "/team/"):
			w.Write([]byte(teamPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer site.Close()

	var deliveries atomic.Int32
	var lastBody map[string]any
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveries.Add(1)
		json.NewDecoder(r.Body).Decode(&lastBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	rec := &telemetry.Recorder{}
	a, err := Open(ctx, testConfig(t, site.URL, webhook.URL), rec)
	require.NoError(t, err)
	defer a.Close(context.Background())

	first, err := a.Tracker.Run(ctx, tracker.RunOptions{})
	require.NoError(t, err)
	require.Equal(t, ranking.Unknown, first.Change.World)

	second, err := a.Tracker.Run(ctx, tracker.RunOptions{})
	require.NoError(t, err)
	require.Equal(t, ranking.Unchanged, second.Change.World)
	require.Equal(t, ranking.Unchanged, second.Change.Region)

	require.Equal(t, int32(2), deliveries.Load())
	require.Equal(t, "CTFtime", lastBody["username"])

	stored, err := a.Store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Empty(t, rec.Broken())
}

func TestOpenBadDatabase(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	// sqlite does not create missing parent directories
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "missing", "history.db")

	_, err := Open(context.Background(), cfg, &telemetry.Recorder{})
	require.ErrorIs(t, err, apperr.ErrPersistence)
}

func TestOpenWithoutWebhook(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v1/teams/") {
			w.Write([]byte(teamAPI))
			return
		}
		w.Write([]byte(teamPage))
	}))
	defer site.Close()

	ctx := context.Background()
	a, err := Open(ctx, testConfig(t, site.URL, ""), &telemetry.Recorder{})
	require.NoError(t, err)
	defer a.Close(ctx)

	stored, err := a.Store.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, stored)

	result, err := a.Tracker.Run(ctx, tracker.RunOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, ranking.Rank(42), result.Current.World)

	_, err = a.Tracker.Run(ctx, tracker.RunOptions{})
	require.ErrorIs(t, err, apperr.ErrConfiguration)
	stored, err = a.Store.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, stored)
}
