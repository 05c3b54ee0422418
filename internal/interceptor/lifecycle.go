package interceptor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
)

// LifecycleState is where the worker is in its install/activate cycle.
type LifecycleState string

const (
	StateParsed     LifecycleState = "parsed"
	StateInstalling LifecycleState = "installing"
	StateInstalled  LifecycleState = "installed"
	StateActivating LifecycleState = "activating"
	StateActivated  LifecycleState = "activated"
	StateRedundant  LifecycleState = "redundant"
)

// Control messages accepted by PostMessage.
const (
	MessageSkipWaiting = "SKIP_WAITING"
	MessageClearCache  = "CLEAR_CACHE"
)

// ErrUnknownMessage is returned by PostMessage for unsupported messages.
var ErrUnknownMessage = errors.New("unknown control message")

// State returns the current lifecycle state.
func (w *Worker) State() LifecycleState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state == "" {
		return StateParsed
	}
	return w.state
}

func (w *Worker) setState(s LifecycleState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	log.Printf("Interceptor %s: %s", w.staticCache, s)
}

// Generations returns the names of the two caches this worker owns.
func (w *Worker) Generations() []string {
	return []string{w.staticCache, w.apiCache}
}

// CacheSummary describes one cache generation.
type CacheSummary struct {
	Name    string   `json:"name"`
	Current bool     `json:"current"`
	Entries []string `json:"entries"`
}

// Caches lists every cache generation with the URLs it holds.
func (w *Worker) Caches(ctx context.Context) []CacheSummary {
	current := map[string]bool{w.staticCache: true, w.apiCache: true}
	summaries := []CacheSummary{}
	for _, name := range w.storage.Keys(ctx) {
		c, err := w.storage.Open(ctx, name)
		if err != nil {
			log.Printf("interceptor: %v", err)
			continue
		}
		summaries = append(summaries, CacheSummary{Name: c.Name(), Current: current[c.Name()], Entries: c.Entries(ctx)})
	}
	return summaries
}

// Install warms the static cache with the shell manifest. A failed fetch
// fails the install and leaves the worker redundant.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)
	if err := w.WarmStatic(ctx); err != nil {
		w.setState(StateRedundant)
		return err
	}
	w.setState(StateInstalled)
	return nil
}

// WarmStatic fetches every shell path from the origin into the static
// cache, bypassing the strategies.
func (w *Worker) WarmStatic(ctx context.Context) error {
	if w.origin == nil {
		return errors.New("interceptor: no origin configured")
	}
	c, err := w.storage.Open(ctx, w.staticCache)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.staticCache, err)
	}
	var errs []error
	for _, p := range w.shell {
		target := w.origin.ResolveReference(&url.URL{Path: p})
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resp, err := w.next.RoundTrip(req)
		if err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", p, err))
			continue
		}
		e, err := bufferResponse(req, resp)
		if err == nil && e.Status != http.StatusOK {
			err = fmt.Errorf("status %d", e.Status)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", p, err))
			continue
		}
		if err := c.Put(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Activate deletes every cache generation except this worker's two and
// starts serving all clients.
func (w *Worker) Activate(ctx context.Context) ([]string, error) {
	w.setState(StateActivating)
	keep := map[string]bool{w.staticCache: true, w.apiCache: true}
	var deleted []string
	var errs []error
	for _, name := range w.storage.Keys(ctx) {
		if keep[name] {
			continue
		}
		if _, err := w.storage.Delete(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted = append(deleted, name)
	}
	if len(deleted) > 0 {
		log.Printf("Interceptor removed old cache generations: %v", deleted)
	}
	w.setState(StateActivated)
	return deleted, errors.Join(errs...)
}

// ClearCaches deletes every cache, including this worker's own.
func (w *Worker) ClearCaches(ctx context.Context) error {
	var errs []error
	for _, name := range w.storage.Keys(ctx) {
		if _, err := w.storage.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	log.Println("Interceptor caches cleared")
	return errors.Join(errs...)
}

// PostMessage handles a control message in the background and returns
// immediately.
func (w *Worker) PostMessage(msg string) error {
	var handle func(context.Context) error
	switch msg {
	case MessageSkipWaiting:
		handle = func(ctx context.Context) error {
			if w.State() != StateInstalled {
				return nil
			}
			_, err := w.Activate(ctx)
			return err
		}
	case MessageClearCache:
		handle = w.ClearCaches
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg)
	}

	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		if err := handle(context.Background()); err != nil {
			log.Printf("interceptor: %s: %v", msg, err)
		}
	}()
	return nil
}

// Wait blocks until posted messages have been handled.
func (w *Worker) Wait() {
	w.pending.Wait()
}
