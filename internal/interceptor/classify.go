// Package interceptor sits between every client and the network. Each
// request is classified once and handed to the caching strategy for its
// class; whatever happens, the caller gets a response back.
package interceptor

import (
	"net/http"
	"path"
	"strings"
)

// Strategy tags how a request is served.
type Strategy int

const (
	StrategyAPI Strategy = iota
	StrategyStatic
	StrategyPage
	StrategyDefault
)

func (s Strategy) String() string {
	switch s {
	case StrategyAPI:
		return "api"
	case StrategyStatic:
		return "static"
	case StrategyPage:
		return "page"
	default:
		return "default"
	}
}

var staticPrefixes = []string{"/static/", "/assets/"}

var staticExtensions = map[string]bool{
	".css": true, ".js": true, ".mjs": true, ".map": true,
	".svg": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".ico": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
	".webmanifest": true,
}

// Classifier maps a request to its strategy.
type Classifier struct {
	apiHosts map[string]bool
}

// NewClassifier creates a classifier. Requests to any of apiHosts are API
// requests whatever their path.
func NewClassifier(apiHosts []string) *Classifier {
	hosts := make(map[string]bool, len(apiHosts))
	for _, h := range apiHosts {
		if h != "" {
			hosts[strings.ToLower(h)] = true
		}
	}
	return &Classifier{apiHosts: hosts}
}

// Classify applies the rules in precedence order: API, static asset, page, default.
func (c *Classifier) Classify(req *http.Request) Strategy {
	p := req.URL.Path
	if c.apiHosts[strings.ToLower(req.URL.Hostname())] || strings.HasPrefix(p, "/api/") {
		return StrategyAPI
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return StrategyStatic
		}
	}
	if staticExtensions[strings.ToLower(path.Ext(p))] {
		return StrategyStatic
	}
	if req.Method == http.MethodGet && strings.Contains(req.Header.Get("Accept"), "text/html") {
		return StrategyPage
	}
	return StrategyDefault
}
