package interceptor

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/vrsandeep/noor-go/internal/models"
)

const offlineMessage = "You are offline and this content has not been downloaded yet."

type placeholderShape string

const (
	shapeQuran   placeholderShape = "quran"
	shapeHadith  placeholderShape = "hadith"
	shapeGeneric placeholderShape = "generic"
)

// placeholderRoutes is checked in order; the first match picks the shape.
var placeholderRoutes = []struct {
	host  *regexp.Regexp
	path  *regexp.Regexp
	shape placeholderShape
}{
	{host: regexp.MustCompile(`(^|\.)(alquran\.cloud|quran\.com)$`), path: regexp.MustCompile(`^/api/quran/`), shape: shapeQuran},
	{path: regexp.MustCompile(`^/api/hadith/|/hadith-api`), shape: shapeHadith},
}

func shapeFor(req *http.Request) placeholderShape {
	host := strings.ToLower(req.URL.Hostname())
	for _, route := range placeholderRoutes {
		if route.host != nil && route.host.MatchString(host) {
			return route.shape
		}
		if route.path != nil && route.path.MatchString(req.URL.Path) {
			return route.shape
		}
	}
	return shapeGeneric
}

type offlinePayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func placeholderData(shape placeholderShape) any {
	switch shape {
	case shapeQuran:
		return map[string][]any{"surahs": {}, "ayahs": {}}
	case shapeHadith:
		return map[string][]any{"collections": {}, "hadiths": {}}
	}
	return map[string]any{}
}

// placeholder synthesizes the offline JSON payload for req.
func placeholder(req *http.Request) *http.Response {
	body, _ := json.Marshal(offlinePayload{
		Status:  "offline",
		Message: offlineMessage,
		Data:    placeholderData(shapeFor(req)),
	})
	return synthesize(req, http.StatusServiceUnavailable, "application/json", body)
}

type standIn struct {
	contentType string
	body        string
}

var staticStandIns = map[string]standIn{
	".css":         {"text/css; charset=utf-8", "/* offline */\n"},
	".js":          {"application/javascript", "/* offline */\n"},
	".mjs":         {"application/javascript", "/* offline */\n"},
	".svg":         {"image/svg+xml", `<svg xmlns="http://www.w3.org/2000/svg"/>`},
	".webmanifest": {"application/manifest+json", "{}"},
}

// staticStandIn returns a minimal asset of the requested type.
func staticStandIn(req *http.Request) *http.Response {
	s, ok := staticStandIns[strings.ToLower(path.Ext(req.URL.Path))]
	if !ok {
		s = standIn{contentType: "application/octet-stream"}
	}
	return synthesize(req, http.StatusOK, s.contentType, []byte(s.body))
}

const offlinePage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>Offline</title></head>
<body><main><h1>You are offline</h1><p>This page has not been saved for offline reading yet.</p></main></body>
</html>
`

func offlineHTML(req *http.Request) *http.Response {
	return synthesize(req, http.StatusServiceUnavailable, "text/html; charset=utf-8", []byte(offlinePage))
}

func synthesize(req *http.Request, status int, contentType string, body []byte) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.Itoa(len(body)))
	header.Set("Cache-Control", "no-store")
	header.Set(models.FallbackHeader, "placeholder")
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
