// Package offline drives the bulk "download everything" cycle and decides
// when stored content is trusted over the network.
package offline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/vrsandeep/noor-go/internal/jobs"
	"github.com/vrsandeep/noor-go/internal/memcache"
	"github.com/vrsandeep/noor-go/internal/models"
	"github.com/vrsandeep/noor-go/internal/store"
	"github.com/vrsandeep/noor-go/internal/websocket"
)

// Share of the progress bar given to the Quran corpus; hadiths get the rest.
const quranShare = 60

// PrefetchReport summarizes one bulk prefetch run.
type PrefetchReport struct {
	Total    int           `json:"total"`
	Failed   int           `json:"failed"`
	Verses   int           `json:"verses"`
	Hadiths  int           `json:"hadiths"`
	Duration time.Duration `json:"duration"`
}

// Manager owns the offline status marker and the bulk prefetch.
type Manager struct {
	store              *store.Store
	memory             *memcache.Cache
	quran              models.QuranProvider
	hadith             models.HadithProvider
	hub                *websocket.Hub
	booksPerCollection int

	running atomic.Bool

	mu      sync.Mutex
	current models.OfflineStatus // mirror used when the store is unavailable
}

// NewManager creates a manager. booksPerCollection caps how many books of
// each hadith collection are prefetched; 0 means all of them.
func NewManager(st *store.Store, memory *memcache.Cache, quran models.QuranProvider, hadith models.HadithProvider,
	hub *websocket.Hub, booksPerCollection int) *Manager {
	return &Manager{
		store:              st,
		memory:             memory,
		quran:              quran,
		hadith:             hadith,
		hub:                hub,
		booksPerCollection: booksPerCollection,
		current:            models.OfflineStatus{State: models.StateNotStarted},
	}
}

// Status returns the current offline status.
func (m *Manager) Status(ctx context.Context) models.OfflineStatus {
	if m.store.Available() {
		return m.store.LoadOfflineStatus(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CheckAvailability reports whether the whole corpus has been downloaded.
func (m *Manager) CheckAvailability(ctx context.Context) bool {
	return m.Status(ctx).Available()
}

// Recover loads the persisted status. A run that was still in progress
// when the process stopped is marked as interrupted; its writes are kept.
func (m *Manager) Recover(ctx context.Context) models.OfflineStatus {
	status := m.store.LoadOfflineStatus(ctx)
	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	if status.State == models.StateInProgress && !m.Running() {
		m.setStatus(ctx, models.OfflineStatus{State: models.StateError, Percent: status.Percent,
			Message: "Previous download was interrupted", Failed: status.Failed})
	}
	return m.Status(ctx)
}

// Running reports whether a prefetch or refresh is in flight.
func (m *Manager) Running() bool {
	return m.running.Load()
}

func (m *Manager) setStatus(ctx context.Context, next models.OfflineStatus) {
	m.mu.Lock()
	if !m.current.CanTransition(next) {
		log.Printf("offline: ignoring status change %s(%d) -> %s(%d)", m.current.State, m.current.Percent, next.State, next.Percent)
		m.mu.Unlock()
		return
	}
	next.UpdatedAt = time.Now().UTC()
	m.current = next
	m.mu.Unlock()

	// A cancelled run still has to record how it ended.
	if err := m.store.SaveOfflineStatus(context.WithoutCancel(ctx), next); err != nil {
		log.Printf("offline: persist status: %v", err)
	}
}

// PrefetchAll downloads the surah list, every surah's verses, the hadith
// collections, their books and every book's hadiths, in that order. Item
// failures are counted and skipped; the run then ends in the error state
// with a *models.PartialPrefetchError. onProgress may be nil.
func (m *Manager) PrefetchAll(ctx context.Context, onProgress func(int)) (*PrefetchReport, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, models.ErrPrefetchRunning
	}
	defer m.running.Store(false)
	return m.prefetch(ctx, jobs.OfflinePrefetchJob, onProgress)
}

// ClearAll wipes the stored corpus and the memory cache and resets the
// status to not_started. The content version marker survives.
func (m *Manager) ClearAll(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return models.ErrPrefetchRunning
	}
	defer m.running.Store(false)
	return m.clear(ctx)
}

// Refresh clears everything and prefetches again.
//
// Nothing is rolled back if the prefetch fails or is interrupted after the
// clear: the store can end up emptier than before the refresh.
func (m *Manager) Refresh(ctx context.Context, onProgress func(int)) (*PrefetchReport, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, models.ErrPrefetchRunning
	}
	defer m.running.Store(false)
	if err := m.clear(ctx); err != nil {
		return nil, err
	}
	return m.prefetch(ctx, jobs.OfflineRefreshJob, onProgress)
}

func (m *Manager) clear(ctx context.Context) error {
	version, hasVersion := m.store.ContentVersion(ctx)
	if err := m.store.ClearAll(ctx); err != nil {
		return err
	}
	m.memory.Reset()
	if hasVersion {
		if err := m.store.SetContentVersion(ctx, version); err != nil {
			log.Printf("offline: restore content version: %v", err)
		}
	}
	m.setStatus(ctx, models.OfflineStatus{State: models.StateNotStarted})
	log.Println("Offline data cleared")
	return nil
}

// EnsureContentVersion compares the stored content version marker with
// current. An older or unreadable marker clears the corpus so that a fresh
// prefetch is needed; it reports whether that happened.
func (m *Manager) EnsureContentVersion(ctx context.Context, current string) (bool, error) {
	want, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("content version %q: %w", current, err)
	}
	if !m.store.Available() {
		return false, nil
	}

	stored, ok := m.store.ContentVersion(ctx)
	if !ok {
		return false, m.store.SetContentVersion(ctx, want.String())
	}
	have, err := semver.NewVersion(stored)
	if err == nil && !have.LessThan(want) {
		if have.GreaterThan(want) {
			log.Printf("offline: stored content version %s is newer than %s, keeping data", have, want)
		}
		return false, nil
	}

	log.Printf("offline: content version changed (%s -> %s), clearing offline data", stored, want)
	if err := m.ClearAll(ctx); err != nil {
		return false, err
	}
	return true, m.store.SetContentVersion(ctx, want.String())
}

// RegisterJobs exposes prefetch and refresh as background jobs.
func (m *Manager) RegisterJobs(jm *jobs.JobManager) {
	jm.Register(jobs.OfflinePrefetchJob, "Download offline data", func(jobs.JobContext) error {
		_, err := m.PrefetchAll(jm.Context(), nil)
		return err
	})
	jm.Register(jobs.OfflineRefreshJob, "Refresh offline data", func(jobs.JobContext) error {
		_, err := m.Refresh(jm.Context(), nil)
		return err
	})
}

type prefetchRun struct {
	m          *Manager
	ctx        context.Context
	jobID      string
	onProgress func(int)
	report     PrefetchReport
	errs       []error
	percent    int
}

func (r *prefetchRun) fail(err error) {
	log.Printf("offline: %v", err)
	r.report.Failed++
	r.errs = append(r.errs, err)
}

// progress records p percent (clamped so it never goes backwards).
func (r *prefetchRun) progress(p int, message string) {
	if p < r.percent {
		p = r.percent
	}
	if p > 99 {
		p = 99
	}
	r.percent = p
	r.m.setStatus(r.ctx, models.OfflineStatus{State: models.StateInProgress, Percent: p, Message: message, Failed: r.report.Failed})
	if r.onProgress != nil {
		r.onProgress(p)
	}
	r.m.hub.BroadcastJSON(models.ProgressUpdate{
		JobID:    r.jobID,
		Message:  message,
		Progress: float64(p),
		Status:   string(models.StateInProgress),
		Failed:   r.report.Failed,
	})
}

func (m *Manager) prefetch(ctx context.Context, jobID string, onProgress func(int)) (*PrefetchReport, error) {
	if !m.store.Available() {
		return nil, fmt.Errorf("offline prefetch: %w", models.ErrStorageUnavailable)
	}
	start := time.Now()
	r := &prefetchRun{m: m, ctx: ctx, jobID: jobID, onProgress: onProgress}
	log.Printf("Starting offline prefetch (%s)", jobID)

	r.progress(0, "Starting download")
	// Reads memoized before the run must not shadow what it writes.
	m.memory.Reset()
	defer m.memory.Reset()

	err := r.prefetchQuran()
	if err == nil {
		err = r.prefetchHadith()
	}
	r.report.Duration = time.Since(start)

	if err != nil {
		// Interrupted: what was written stays.
		m.setStatus(ctx, models.OfflineStatus{State: models.StateError, Percent: r.percent,
			Message: "Download interrupted: " + err.Error(), Failed: r.report.Failed})
		r.m.hub.BroadcastJSON(models.ProgressUpdate{JobID: jobID, Message: err.Error(), Progress: float64(r.percent),
			Status: string(models.StateError), Failed: r.report.Failed, Done: true})
		return &r.report, err
	}

	final := models.OfflineStatus{State: models.StateComplete, Percent: 100, Message: "Offline data ready"}
	var result error
	if r.report.Failed > 0 {
		final = models.OfflineStatus{State: models.StateError, Percent: 100, Failed: r.report.Failed,
			Message: fmt.Sprintf("%d of %d items failed to download", r.report.Failed, r.report.Total)}
		result = &models.PartialPrefetchError{Failed: r.report.Failed, Total: r.report.Total, Errors: r.errs}
	}
	m.setStatus(ctx, final)
	if onProgress != nil {
		onProgress(100)
	}
	m.hub.BroadcastJSON(models.ProgressUpdate{JobID: jobID, Message: final.Message, Progress: 100,
		Status: string(final.State), Failed: r.report.Failed, Done: true})
	log.Printf("Offline prefetch finished in %s: %d verses, %d hadiths, %d of %d items failed",
		r.report.Duration.Round(time.Millisecond), r.report.Verses, r.report.Hadiths, r.report.Failed, r.report.Total)
	return &r.report, result
}

func (r *prefetchRun) prefetchQuran() error {
	st := r.m.store
	r.report.Total++
	surahs, err := r.m.quran.FetchSurahList(r.ctx)
	if err != nil {
		r.fail(fmt.Errorf("surah list: %w", err))
	}
	for _, meta := range surahs {
		if err := st.PutSurahMetadata(r.ctx, meta); err != nil {
			r.fail(err)
			break
		}
	}

	for n := 1; n <= models.SurahCount; n++ {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.report.Total++
		verses, err := r.m.quran.FetchSurahVerses(r.ctx, n)
		if err == nil {
			err = st.PutVerses(r.ctx, verses)
		}
		if err != nil {
			r.fail(fmt.Errorf("surah %d: %w", n, err))
		} else {
			r.report.Verses += len(verses)
		}
		r.progress(n*quranShare/models.SurahCount, fmt.Sprintf("Downloaded surah %d of %d", n, models.SurahCount))
	}
	return nil
}

func (r *prefetchRun) prefetchHadith() error {
	st := r.m.store
	r.report.Total++
	collections, err := r.m.hadith.FetchCollections(r.ctx)
	if err != nil {
		r.fail(fmt.Errorf("hadith collections: %w", err))
		return nil
	}

	for i, col := range collections {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		base := quranShare + i*(100-quranShare)/len(collections)
		span := (100 - quranShare) / len(collections)

		r.report.Total++
		books, err := r.m.hadith.FetchCollectionBooks(r.ctx, col.CollectionID)
		if err != nil {
			r.fail(fmt.Errorf("books of %s: %w", col.CollectionID, err))
			r.progress(base+span, fmt.Sprintf("Skipped collection %s", col.CollectionID))
			continue
		}
		if r.m.booksPerCollection > 0 && len(books) > r.m.booksPerCollection {
			books = books[:r.m.booksPerCollection]
		}
		col.Books = books
		if err := st.PutCollectionMetadata(r.ctx, col); err != nil {
			r.fail(err)
		}

		for j, book := range books {
			if err := r.ctx.Err(); err != nil {
				return err
			}
			r.report.Total++
			hadiths, err := r.m.hadith.FetchBookHadiths(r.ctx, col.CollectionID, book.BookNumber)
			if err == nil {
				err = st.PutHadiths(r.ctx, hadiths)
			}
			if err != nil {
				r.fail(fmt.Errorf("%s book %s: %w", col.CollectionID, book.BookNumber, err))
			} else {
				r.report.Hadiths += len(hadiths)
			}
			r.progress(base+(j+1)*span/len(books),
				fmt.Sprintf("Downloaded %s book %s (%d of %d)", col.CollectionID, book.BookNumber, j+1, len(books)))
		}

		if err := st.RebuildCollectionMetadata(r.ctx, col.CollectionID); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("offline: %v", err)
		}
	}
	return nil
}
