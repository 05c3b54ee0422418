package interceptor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/noor-go/internal/cachestore"
	"github.com/vrsandeep/noor-go/internal/connectivity"
	"github.com/vrsandeep/noor-go/internal/interceptor"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/testutil"
)

const originURL = "http://origin.test"

var shellFiles = map[string]struct{ contentType, body string }{
	"/":                       {"text/html; charset=utf-8", "<html><body>noor shell</body></html>"},
	"/static/css/app.css":     {"text/css; charset=utf-8", "body { color: black; }"},
	"/static/js/app.js":       {"application/javascript", "console.log('noor');"},
	"/about":                  {"text/html; charset=utf-8", "<html><body>about</body></html>"},
	"/api/surah/1":            {"application/json", `{"surahNumber":1,"verses":[]}`},
	"/api/hadith/collections": {"application/json", `[{"collectionId":"bukhari"}]`},
}

// fakeNetwork serves shellFiles in-process and counts every call.
type fakeNetwork struct {
	calls atomic.Int64
	down  atomic.Bool
	gone  sync.Map // paths that now answer 404
}

func (n *fakeNetwork) RoundTrip(req *http.Request) (*http.Response, error) {
	n.calls.Add(1)
	if n.down.Load() {
		return nil, errors.New("dial tcp: connection refused")
	}
	rec := httptest.NewRecorder()
	if _, gone := n.gone.Load(req.URL.Path); gone {
		http.NotFound(rec, req)
	} else if f, ok := shellFiles[req.URL.Path]; ok {
		rec.Header().Set("Content-Type", f.contentType)
		io.WriteString(rec, f.body)
	} else {
		http.NotFound(rec, req)
	}
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

type fixture struct {
	network *fakeNetwork
	storage *cachestore.Storage
	conn    *connectivity.State
	worker  *interceptor.Worker
}

func newFixture(t *testing.T, version string) *fixture {
	t.Helper()
	f := &fixture{
		network: &fakeNetwork{},
		storage: cachestore.New(testutil.SetupTestCacheDB(t)),
		conn:    connectivity.NewState(true),
	}
	f.worker = f.newWorker(version)
	return f
}

func (f *fixture) newWorker(version string) *interceptor.Worker {
	origin, _ := url.Parse(originURL)
	return interceptor.NewWorker(f.storage, interceptor.Options{
		Version:      version,
		Origin:       origin,
		APIHosts:     []string{"api.alquran.cloud"},
		Shell:        []string{"/", "/static/css/app.css", "/static/js/app.js"},
		Transport:    f.network,
		Connectivity: f.conn,
	})
}

func get(t *testing.T, w *interceptor.Worker, target string, accept string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RequestURI = ""
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := w.RoundTrip(req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestClassify(t *testing.T) {
	c := interceptor.NewClassifier([]string{"api.alquran.cloud", "cdn.jsdelivr.net"})
	cases := []struct {
		name   string
		method string
		target string
		accept string
		want   interceptor.Strategy
	}{
		{"upstream host", "GET", "https://api.alquran.cloud/v1/surah/2", "", interceptor.StrategyAPI},
		{"upstream host beats extension", "GET", "https://cdn.jsdelivr.net/gh/x/editions.json", "", interceptor.StrategyAPI},
		{"origin api path", "GET", "http://origin.test/api/surah/1", "text/html", interceptor.StrategyAPI},
		{"static prefix", "GET", "http://origin.test/static/anything", "", interceptor.StrategyStatic},
		{"assets prefix", "GET", "http://origin.test/assets/logo", "", interceptor.StrategyStatic},
		{"static extension", "GET", "http://origin.test/manifest.webmanifest", "text/html", interceptor.StrategyStatic},
		{"html navigation", "GET", "http://origin.test/surah/2", "text/html,application/xhtml+xml", interceptor.StrategyPage},
		{"post is never a page", "POST", "http://origin.test/surah/2", "text/html", interceptor.StrategyDefault},
		{"everything else", "GET", "http://origin.test/ws/progress", "", interceptor.StrategyDefault},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}
			assert.Equal(t, tc.want, c.Classify(req))
		})
	}
}

func TestStaticAssetIsServedFromCacheWithoutNetwork(t *testing.T) {
	f := newFixture(t, "v1")
	require.NoError(t, f.worker.Install(context.Background()))
	assert.Equal(t, interceptor.StateInstalled, f.worker.State())

	before := f.network.calls.Load()
	resp, body := get(t, f.worker, originURL+"/static/css/app.css", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body { color: black; }", body)
	assert.Equal(t, before, f.network.calls.Load(), "a cached static asset must not touch the network")
}

func TestStaticAssetMissFetchesAndFallsBackToStandIn(t *testing.T) {
	f := newFixture(t, "v1")

	_, body := get(t, f.worker, originURL+"/static/js/app.js", "")
	assert.Equal(t, "console.log('noor');", body)
	assert.Equal(t, int64(1), f.network.calls.Load())
	// Now cached.
	get(t, f.worker, originURL+"/static/js/app.js", "")
	assert.Equal(t, int64(1), f.network.calls.Load())

	f.network.down.Store(true)
	resp, body := get(t, f.worker, originURL+"/static/css/theme.css", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "placeholder", resp.Header.Get(models.FallbackHeader))
	assert.Contains(t, body, "offline")
}

func TestAPINetworkFirstFallsBackToCache(t *testing.T) {
	f := newFixture(t, "v1")

	resp, body := get(t, f.worker, originURL+"/api/surah/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(models.FallbackHeader))

	f.network.down.Store(true)
	resp, cached := get(t, f.worker, originURL+"/api/surah/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, body, cached)
	assert.Equal(t, "cache", resp.Header.Get(models.FallbackHeader))
}

func TestAPINotFoundIsNotCached(t *testing.T) {
	f := newFixture(t, "v1")
	resp, _ := get(t, f.worker, originURL+"/api/surah/999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.network.down.Store(true)
	resp, _ = get(t, f.worker, originURL+"/api/surah/999", "")
	assert.Equal(t, "placeholder", resp.Header.Get(models.FallbackHeader))
}

func TestAPIRemovedUpstreamIsEvicted(t *testing.T) {
	f := newFixture(t, "v1")
	ctx := context.Background()
	get(t, f.worker, originURL+"/api/surah/1", "")
	assert.Contains(t, cachedURLs(t, f.worker, interceptor.APICacheName("v1")), originURL+"/api/surah/1")

	f.network.gone.Store("/api/surah/1", true)
	resp, _ := get(t, f.worker, originURL+"/api/surah/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, cachedURLs(t, f.worker, interceptor.APICacheName("v1")), originURL+"/api/surah/1")

	f.network.down.Store(true)
	resp, _ = get(t, f.worker, originURL+"/api/surah/1", "")
	assert.Equal(t, "placeholder", resp.Header.Get(models.FallbackHeader))
	assert.NotEmpty(t, f.worker.Caches(ctx))
}

func cachedURLs(t *testing.T, w *interceptor.Worker, name string) []string {
	t.Helper()
	for _, c := range w.Caches(context.Background()) {
		if c.Name == name {
			return c.Entries
		}
	}
	return nil
}

func TestCachesSummary(t *testing.T) {
	f := newFixture(t, "v2")
	ctx := context.Background()
	_, err := f.storage.Open(ctx, "noor-api-v1")
	require.NoError(t, err)
	require.NoError(t, f.worker.Install(ctx))

	caches := f.worker.Caches(ctx)
	byName := map[string]interceptor.CacheSummary{}
	for _, c := range caches {
		byName[c.Name] = c
	}
	require.Len(t, byName, 2)
	assert.False(t, byName["noor-api-v1"].Current)
	assert.Empty(t, byName["noor-api-v1"].Entries)
	static := byName[interceptor.StaticCacheName("v2")]
	assert.True(t, static.Current)
	assert.ElementsMatch(t, []string{
		originURL + "/",
		originURL + "/static/css/app.css",
		originURL + "/static/js/app.js",
	}, static.Entries)
}

func TestOfflineCachedSurahSkipsNetwork(t *testing.T) {
	f := newFixture(t, "v1")
	_, online := get(t, f.worker, originURL+"/api/surah/1", "")

	f.conn.Set(false)
	before := f.network.calls.Load()
	resp, body := get(t, f.worker, originURL+"/api/surah/1", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, online, body)
	assert.Equal(t, before, f.network.calls.Load())
}

type offlineBody struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func TestOfflinePlaceholderShapes(t *testing.T) {
	f := newFixture(t, "v1")
	f.conn.Set(false)

	decode := func(t *testing.T, target string) offlineBody {
		resp, body := get(t, f.worker, target, "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.Equal(t, "placeholder", resp.Header.Get(models.FallbackHeader))
		var payload offlineBody
		require.NoError(t, json.Unmarshal([]byte(body), &payload))
		assert.Equal(t, "offline", payload.Status)
		assert.NotEmpty(t, payload.Message)
		require.NotNil(t, payload.Data)
		return payload
	}

	t.Run("uncached surah is generic", func(t *testing.T) {
		payload := decode(t, originURL+"/api/surah/999")
		assert.Empty(t, payload.Data)
	})
	t.Run("quran api", func(t *testing.T) {
		for _, target := range []string{"https://api.alquran.cloud/v1/surah/2", originURL + "/api/quran/surahs"} {
			payload := decode(t, target)
			assert.JSONEq(t, "[]", string(payload.Data["surahs"]))
			assert.JSONEq(t, "[]", string(payload.Data["ayahs"]))
			assert.NotContains(t, payload.Data, "hadiths")
		}
	})
	t.Run("hadith api", func(t *testing.T) {
		payload := decode(t, originURL+"/api/hadith/bukhari/books")
		assert.JSONEq(t, "[]", string(payload.Data["collections"]))
		assert.JSONEq(t, "[]", string(payload.Data["hadiths"]))
		assert.NotContains(t, payload.Data, "surahs")
	})
	assert.Equal(t, int64(0), f.network.calls.Load())
}

func TestPageFallbacks(t *testing.T) {
	f := newFixture(t, "v1")

	_, about := get(t, f.worker, originURL+"/about", "text/html")
	assert.Contains(t, about, "about")

	f.conn.Set(false)
	resp, body := get(t, f.worker, originURL+"/about", "text/html")
	assert.Equal(t, about, body, "a visited page comes back from the cache")
	assert.Equal(t, "cache", resp.Header.Get(models.FallbackHeader))

	resp, body = get(t, f.worker, originURL+"/surah/55", "text/html")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "no shell cached yet")
	assert.Contains(t, body, "You are offline")

	f.conn.Set(true)
	require.NoError(t, f.worker.Install(context.Background()))
	f.conn.Set(false)

	resp, body = get(t, f.worker, originURL+"/surah/55?from=home", "text/html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html><body>noor shell</body></html>", body)
}

func TestNonGetNeverFails(t *testing.T) {
	f := newFixture(t, "v1")
	f.network.down.Store(true)

	req := httptest.NewRequest(http.MethodPost, originURL+"/api/offline/prefetch", strings.NewReader("{}"))
	req.RequestURI = ""
	resp, err := f.worker.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestInstallFailureMakesWorkerRedundant(t *testing.T) {
	f := newFixture(t, "v1")
	f.network.down.Store(true)

	assert.Error(t, f.worker.Install(context.Background()))
	assert.Equal(t, interceptor.StateRedundant, f.worker.State())
}

func TestActivateRemovesOldGenerations(t *testing.T) {
	f := newFixture(t, "v2")
	ctx := context.Background()

	old := f.newWorker("v1")
	require.NoError(t, old.Install(ctx))
	get(t, old, originURL+"/api/surah/1", "")
	_, err := f.storage.Open(ctx, "unrelated")
	require.NoError(t, err)

	require.NoError(t, f.worker.Install(ctx))
	get(t, f.worker, originURL+"/api/surah/1", "")
	deleted, err := f.worker.Activate(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"noor-static-v1", "noor-api-v1", "unrelated"}, deleted)
	assert.ElementsMatch(t, f.worker.Generations(), f.storage.Keys(ctx))
	assert.Equal(t, interceptor.StateActivated, f.worker.State())
}

func TestActivateAfterFailedInstall(t *testing.T) {
	f := newFixture(t, "v2")
	ctx := context.Background()
	old := f.newWorker("v1")
	require.NoError(t, old.Install(ctx))

	f.network.down.Store(true)
	require.Error(t, f.worker.Install(ctx))
	deleted, err := f.worker.Activate(ctx)
	require.NoError(t, err)

	assert.Contains(t, deleted, "noor-static-v1")
	assert.Subset(t, f.worker.Generations(), f.storage.Keys(ctx))
	assert.Equal(t, interceptor.StateActivated, f.worker.State())
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t, "v1")
	ctx := context.Background()
	require.NoError(t, f.worker.Install(ctx))

	require.NoError(t, f.worker.PostMessage(interceptor.MessageSkipWaiting))
	assert.Eventually(t, func() bool {
		return f.worker.State() == interceptor.StateActivated
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.worker.PostMessage(interceptor.MessageClearCache))
	assert.Eventually(t, func() bool {
		return len(f.storage.Keys(ctx)) == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, f.worker.PostMessage("RELOAD"), interceptor.ErrUnknownMessage)
	f.worker.Wait()
}

func TestGatewayServesOriginAndFallsBack(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"status":"ok"}`)
			return
		}
		http.NotFound(w, r)
	}))
	originAddr, _ := url.Parse(origin.URL)

	conn := connectivity.NewState(true)
	worker := interceptor.NewWorker(cachestore.New(testutil.SetupTestCacheDB(t)), interceptor.Options{
		Version:      "v1",
		Origin:       originAddr,
		Connectivity: conn,
	})
	gateway := httptest.NewServer(worker.Gateway())
	defer gateway.Close()

	fetch := func() (*http.Response, string) {
		resp, err := http.Get(gateway.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	resp, body := fetch()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	origin.Close()
	resp, body = fetch()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.Equal(t, "cache", resp.Header.Get(models.FallbackHeader))
}
