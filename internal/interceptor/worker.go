package interceptor

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"

	"github.com/vrsandeep/noor-go/internal/cachestore"
	"github.com/vrsandeep/noor-go/internal/connectivity"
	"github.com/vrsandeep/noor-go/internal/models"
)

type strategyFunc func(req *http.Request) *http.Response

// Options configures a Worker.
type Options struct {
	// Version names the cache generations, e.g. "v1".
	Version string
	// Origin is where the gateway forwards browser traffic and where the
	// shell manifest is fetched from.
	Origin *url.URL
	// APIHosts are upstream content API hosts.
	APIHosts []string
	// Shell lists the paths warmed into the static cache on install.
	Shell []string
	// Transport performs real network calls. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Connectivity, when set, lets the worker skip the network while offline.
	Connectivity *connectivity.State
}

// Worker applies the caching strategies. It is an http.RoundTripper for
// outbound clients and, through Gateway, a handler for browser traffic.
type Worker struct {
	storage    *cachestore.Storage
	next       http.RoundTripper
	conn       *connectivity.State
	classifier *Classifier
	origin     *url.URL
	shell      []string
	strategies map[Strategy]strategyFunc

	staticCache string
	apiCache    string

	mu    sync.RWMutex
	state LifecycleState

	pending sync.WaitGroup
}

func NewWorker(storage *cachestore.Storage, opts Options) *Worker {
	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	w := &Worker{
		storage:     storage,
		next:        next,
		conn:        opts.Connectivity,
		classifier:  NewClassifier(opts.APIHosts),
		origin:      opts.Origin,
		shell:       opts.Shell,
		staticCache: StaticCacheName(opts.Version),
		apiCache:    APICacheName(opts.Version),
	}
	w.strategies = map[Strategy]strategyFunc{
		StrategyAPI:     w.networkFirstAPI,
		StrategyStatic:  w.cacheFirstStatic,
		StrategyPage:    w.networkFirstPage,
		StrategyDefault: w.networkFirstDefault,
	}
	return w
}

// StaticCacheName is the shell and static asset generation for version.
func StaticCacheName(version string) string { return "noor-static-" + version }

// APICacheName is the API mirror generation for version.
func APICacheName(version string) string { return "noor-api-" + version }

// RoundTrip serves req through the strategy for its class. It never
// returns an error: on total failure the response is synthesized.
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	if isUpgrade(req) {
		resp, err := w.fetch(req)
		if err != nil {
			return placeholder(req), nil
		}
		return resp, nil
	}
	strategy := w.classifier.Classify(req)
	return w.strategies[strategy](req), nil
}

// Gateway returns a handler that forwards browser requests to the origin
// through the worker.
func (w *Worker) Gateway() http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(w.origin)
			pr.Out.Host = w.origin.Host
		},
		Transport: w,
		ErrorHandler: func(rw http.ResponseWriter, r *http.Request, err error) {
			log.Printf("gateway: %s %s: %v", r.Method, r.URL.Path, err)
			rw.WriteHeader(http.StatusBadGateway)
		},
	}
}

func isUpgrade(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Connection")), "upgrade")
}

func (w *Worker) online() bool {
	return w.conn == nil || w.conn.Online()
}

// errOffline stands in for a network attempt skipped while offline.
type errOffline struct{}

func (errOffline) Error() string { return "offline" }

// fetch goes to the network unless we know we are offline.
func (w *Worker) fetch(req *http.Request) (*http.Response, error) {
	if !w.online() {
		return nil, errOffline{}
	}
	return w.next.RoundTrip(req)
}

// fetchAndBuffer fetches req and reads the whole body. Server errors count
// as failures.
func (w *Worker) fetchAndBuffer(req *http.Request) (*cachestore.Entry, bool) {
	resp, err := w.fetch(req)
	if err != nil {
		if _, offline := err.(errOffline); !offline {
			log.Printf("interceptor: %s %s: %v", req.Method, req.URL, err)
		}
		return nil, false
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		resp.Body.Close()
		return nil, false
	}
	e, err := bufferResponse(req, resp)
	if err != nil {
		log.Printf("interceptor: read %s: %v", req.URL, err)
		return nil, false
	}
	return e, true
}

// bufferResponse reads and closes the body of resp.
func bufferResponse(req *http.Request, resp *http.Response) (*cachestore.Entry, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &cachestore.Entry{URL: cacheKey(req.URL), Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

func cacheKey(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	return clean.String()
}

func (w *Worker) cache(ctx context.Context, name string) *cachestore.Cache {
	c, err := w.storage.Open(ctx, name)
	if err != nil {
		if err != cachestore.ErrUnavailable {
			log.Printf("interceptor: %v", err)
		}
		return nil
	}
	return c
}

// store mirrors a successful GET response into the named cache. A URL the
// network reports as gone is evicted so it cannot be served offline later.
func (w *Worker) store(ctx context.Context, name string, req *http.Request, e *cachestore.Entry) {
	if req.Method != http.MethodGet {
		return
	}
	var err error
	switch e.Status {
	case http.StatusOK:
		if c := w.cache(ctx, name); c != nil {
			err = c.Put(ctx, e)
		}
	case http.StatusNotFound, http.StatusGone:
		if c := w.cache(ctx, name); c != nil {
			err = c.Delete(ctx, e.URL)
		}
	}
	if err != nil {
		log.Printf("interceptor: %v", err)
	}
}

func (w *Worker) match(ctx context.Context, name, key string) *cachestore.Entry {
	if c := w.cache(ctx, name); c != nil {
		return c.Match(ctx, key)
	}
	return nil
}

func fromCache(req *http.Request, e *cachestore.Entry) *http.Response {
	resp := e.Response(req)
	resp.Header.Set(models.FallbackHeader, "cache")
	return resp
}

func (w *Worker) networkFirstAPI(req *http.Request) *http.Response {
	ctx := req.Context()
	if e, ok := w.fetchAndBuffer(req); ok {
		w.store(ctx, w.apiCache, req, e)
		return e.Response(req)
	}
	if req.Method == http.MethodGet {
		if e := w.match(ctx, w.apiCache, cacheKey(req.URL)); e != nil {
			return fromCache(req, e)
		}
	}
	return placeholder(req)
}

func (w *Worker) cacheFirstStatic(req *http.Request) *http.Response {
	ctx := req.Context()
	if req.Method == http.MethodGet {
		if e := w.match(ctx, w.staticCache, cacheKey(req.URL)); e != nil {
			return e.Response(req)
		}
	}
	if e, ok := w.fetchAndBuffer(req); ok {
		w.store(ctx, w.staticCache, req, e)
		return e.Response(req)
	}
	return staticStandIn(req)
}

func (w *Worker) networkFirstPage(req *http.Request) *http.Response {
	ctx := req.Context()
	if e, ok := w.fetchAndBuffer(req); ok {
		w.store(ctx, w.staticCache, req, e)
		return e.Response(req)
	}
	if e := w.match(ctx, w.staticCache, cacheKey(req.URL)); e != nil {
		return fromCache(req, e)
	}
	shell := *req.URL
	shell.Path, shell.RawPath, shell.RawQuery = "/", "", ""
	if e := w.match(ctx, w.staticCache, cacheKey(&shell)); e != nil {
		return fromCache(req, e)
	}
	return offlineHTML(req)
}

func (w *Worker) networkFirstDefault(req *http.Request) *http.Response {
	ctx := req.Context()
	if e, ok := w.fetchAndBuffer(req); ok {
		w.store(ctx, w.apiCache, req, e)
		return e.Response(req)
	}
	if req.Method == http.MethodGet {
		if e := w.match(ctx, w.apiCache, cacheKey(req.URL)); e != nil {
			return fromCache(req, e)
		}
	}
	return placeholder(req)
}
