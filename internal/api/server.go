// It defines the origin API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vrsandeep/noor-go/internal/assets"
	"github.com/vrsandeep/noor-go/internal/core"
)

// Server holds the dependencies for our API.
type Server struct {
	app *core.App
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{app: app}
}

// shellFS returns the application shell: the configured directory when
// set, the embedded copy otherwise. Both hold index.html,
// manifest.webmanifest and dist/.
func (s *Server) shellFS() fs.FS {
	if dir := s.app.Config().Shell.Dir; dir != "" {
		return os.DirFS(dir)
	}
	webSubFS, err := fs.Sub(assets.WebFS, "web")
	if err != nil {
		log.Fatalf("Failed to create web sub-filesystem: %v", err)
	}
	return webSubFS
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)

		// Quran Routes
		r.Get("/quran/surahs", s.handleListSurahs)
		r.Get("/quran/search", s.handleSearchQuran)
		r.Get("/surah/{surah}", s.handleGetSurah)
		r.Get("/surah/{surah}/{ayah}", s.handleGetVerse)

		// Hadith Routes
		r.Get("/hadith/collections", s.handleListCollections)
		r.Get("/hadith/search", s.handleSearchHadith)
		r.Get("/hadith/{collection}/books", s.handleListBooks)
		r.Get("/hadith/{collection}/books/{book}", s.handleGetBookHadiths)

		// Offline Data Routes
		r.Get("/offline/status", s.handleGetOfflineStatus)
		r.Post("/offline/prefetch", s.handlePrefetch)
		r.Post("/offline/refresh", s.handleRefresh)
		r.Post("/offline/clear", s.handleClearOffline)

		r.Get("/connectivity", s.handleGetConnectivity)
		r.Get("/jobs/status", s.handleGetJobsStatus)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			RespondWithError(w, http.StatusNotFound, "Not found")
		})
	})

	// Interceptor control channel
	r.Post("/sw/control", s.handleWorkerControl)
	r.Get("/sw/caches", s.handleListCaches)

	// WebSocket route
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	// Frontend Routes
	shell := s.shellFS()
	staticFS, err := fs.Sub(shell, "dist")
	if err != nil {
		log.Fatalf("Failed to create static sub-filesystem: %v", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// This handler serves a specific file from the shell FS.
	serveFile := func(fileName string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			file, err := shell.Open(fileName)
			if err != nil {
				http.NotFound(w, r)
				log.Printf("Error serving shell file %s: %v", fileName, err)
				return
			}
			defer file.Close()
			seeker, ok := file.(io.ReadSeeker)
			if !ok {
				http.Error(w, "unreadable shell file", http.StatusInternalServerError)
				return
			}
			http.ServeContent(w, r, fileName, time.Time{}, seeker)
		}
	}

	r.Get("/", serveFile("index.html"))
	r.Get("/manifest.webmanifest", serveFile("manifest.webmanifest"))

	// Client-side routes all boot from the shell page.
	index := serveFile("index.html")
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
			index(w, r)
			return
		}
		http.NotFound(w, r)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storage := "ok"
	if db := s.app.DB(); db == nil || db.PingContext(r.Context()) != nil {
		storage = "unavailable"
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": storage,
		"online":  s.app.Connectivity().Online(),
	})
}
