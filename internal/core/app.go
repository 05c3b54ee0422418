package core

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/vrsandeep/noor-go/internal/assets"
	"github.com/vrsandeep/noor-go/internal/cachestore"
	"github.com/vrsandeep/noor-go/internal/config"
	"github.com/vrsandeep/noor-go/internal/connectivity"
	"github.com/vrsandeep/noor-go/internal/db"
	"github.com/vrsandeep/noor-go/internal/interceptor"
	"github.com/vrsandeep/noor-go/internal/jobs"
	"github.com/vrsandeep/noor-go/internal/memcache"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/offline"
	"github.com/vrsandeep/noor-go/internal/store"
	"github.com/vrsandeep/noor-go/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	config     *config.Config
	db         *sql.DB
	cacheDB    *sql.DB
	store      *store.Store
	memory     *memcache.Cache
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	conn       *connectivity.State
	worker     *interceptor.Worker
	offline    *offline.Manager
	content    *offline.ContentService
	quran      models.QuranProvider
	hadith     models.HadithProvider
}

// New sets up and returns a new App instance. It handles loading the
// configuration, opening both databases, running migrations and choosing
// the content providers. A database that cannot be opened is logged and
// the app runs without it.
func New() (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	contentDB := openDB(cfg.Database.Path, db.ContentSchema)
	cacheDB := openDB(cfg.Cache.Path, db.CacheSchema)

	conn := connectivity.NewState(true)
	worker := newWorker(cfg, cacheDB, conn)
	quran, hadith, err := RegisterProviders(cfg, worker)
	if err != nil {
		closeDB(contentDB)
		closeDB(cacheDB)
		return nil, err
	}

	app := Assemble(cfg, contentDB, cacheDB, conn, worker, quran, hadith)

	ctx := context.Background()
	app.offline.Recover(ctx)
	if _, err := app.offline.EnsureContentVersion(ctx, cfg.Content.Version); err != nil {
		log.Printf("Warning: content version check failed: %v", err)
	}

	log.Println("Core application setup complete.")
	return app, nil
}

func openDB(path string, schema db.Schema) *sql.DB {
	database, err := db.Open(path, schema)
	if err != nil {
		log.Printf("Warning: %s database at %s unavailable, continuing without it: %v", schema.Name, path, err)
		return nil
	}
	return database
}

func closeDB(database *sql.DB) {
	if database != nil {
		database.Close()
	}
}

func newWorker(cfg *config.Config, cacheDB *sql.DB, conn *connectivity.State) *interceptor.Worker {
	origin := &url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", cfg.Port)}
	return interceptor.NewWorker(cachestore.New(cacheDB), interceptor.Options{
		Version:      cfg.Cache.Version,
		Origin:       origin,
		APIHosts:     upstreamHosts(cfg),
		Shell:        assets.ShellManifest,
		Connectivity: conn,
	})
}

func upstreamHosts(cfg *config.Config) []string {
	var hosts []string
	for _, raw := range []string{cfg.Upstream.Quran.BaseURL, cfg.Upstream.Hadith.BaseURL} {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			hosts = append(hosts, u.Hostname())
		}
	}
	return hosts
}

// Assemble wires an App from already opened parts. Either database may be
// nil; the matching component then runs degraded.
func Assemble(cfg *config.Config, contentDB, cacheDB *sql.DB, conn *connectivity.State, worker *interceptor.Worker,
	quran models.QuranProvider, hadith models.HadithProvider) *App {
	if conn == nil {
		conn = connectivity.NewState(true)
	}
	if worker == nil {
		worker = newWorker(cfg, cacheDB, conn)
	}

	hub := websocket.NewHub()
	go hub.Run()

	app := &App{
		config:  cfg,
		db:      contentDB,
		cacheDB: cacheDB,
		store:   store.New(contentDB),
		memory:  memcache.New(cfg.Cache.MemorySize),
		wsHub:   hub,
		conn:    conn,
		worker:  worker,
		quran:   quran,
		hadith:  hadith,
	}
	app.jobManager = jobs.NewManager(app)
	app.offline = offline.NewManager(app.store, app.memory, quran, hadith, hub, cfg.Upstream.Hadith.BooksPerCollection)
	app.offline.RegisterJobs(app.jobManager)
	app.content = offline.NewContentService(app.store, app.memory, quran, hadith, conn, app.offline)
	return app
}

// NewMonitor creates the connectivity probe for this app. The caller starts it.
func (a *App) NewMonitor() *connectivity.Monitor {
	interval := time.Duration(a.config.Connectivity.IntervalSeconds) * time.Second
	return connectivity.NewMonitor(a.conn, a.config.Connectivity.ProbeURL, interval, a.wsHub)
}

func (a *App) Config() *config.Config                { return a.config }
func (a *App) DB() *sql.DB                           { return a.db }
func (a *App) CacheDB() *sql.DB                      { return a.cacheDB }
func (a *App) Store() *store.Store                   { return a.store }
func (a *App) Memory() *memcache.Cache               { return a.memory }
func (a *App) WsHub() *websocket.Hub                 { return a.wsHub }
func (a *App) JobManager() *jobs.JobManager          { return a.jobManager }
func (a *App) Connectivity() *connectivity.State     { return a.conn }
func (a *App) Worker() *interceptor.Worker           { return a.worker }
func (a *App) Offline() *offline.Manager             { return a.offline }
func (a *App) Content() *offline.ContentService      { return a.content }
func (a *App) QuranProvider() models.QuranProvider   { return a.quran }
func (a *App) HadithProvider() models.HadithProvider { return a.hadith }

// Close gracefully closes the application's resources, like the DB connections.
func (a *App) Close() {
	closeDB(a.db)
	closeDB(a.cacheDB)
}
