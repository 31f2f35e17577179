package view

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"bookrec/internal/book"
	"bookrec/internal/logger"
	"bookrec/internal/metrics"
	"bookrec/internal/source"
)

// Source is the remote side of the view.
type Source interface {
	Catalog(ctx context.Context) ([]book.Book, error)
	Recommend(ctx context.Context, title string) ([]book.Book, error)
	ByAuthor(ctx context.Context, name string) ([]book.Book, error)
	ByCategory(ctx context.Context, name string) ([]book.Book, error)
	Search(ctx context.Context, query string) ([]book.Book, error)
}

// View owns the recommendation state and the fetches that change it.
// It is safe for concurrent use.
type View struct {
	src      Source
	onChange func(State)

	initOnce sync.Once

	mu     sync.Mutex
	state  State
	gen    uint64 // latest issued fetch
	cancel context.CancelFunc
	closed bool
	seq    uint64 // latest published snapshot

	deliverMu sync.Mutex
	delivered uint64
}

type Option func(*View)

// WithOnChange registers a listener called after every state change.
// Calls are serialized and never go back in time: a snapshot older than one
// already delivered is dropped. The listener must not call back into the
// view's mutating methods.
func WithOnChange(fn func(State)) Option {
	return func(v *View) { v.onChange = fn }
}

func New(src Source, opts ...Option) *View {
	v := &View{src: src}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Initialize fetches the catalog. Only the first call does anything.
func (v *View) Initialize(ctx context.Context) {
	v.initOnce.Do(func() { v.loadCatalog(ctx) })
}

func (v *View) loadCatalog(ctx context.Context) {
	ctx = logger.ContextWithID(ctx, uuid.NewString())
	books, err := v.src.Catalog(ctx)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if err != nil {
		logger.For(ctx).WithError(err).Warn("catalog.unavailable")
		// a fetch already in flight or finished owns the status
		if v.gen == 0 {
			v.state.Status = Error(CatalogErrorMessage)
		}
	} else {
		v.state.Catalog = books
	}
	snap, seq := v.publishLocked()
	v.mu.Unlock()

	v.notify(snap, seq)
}

// SetSelectedTitle stores the title; empty means no selection.
func (v *View) SetSelectedTitle(title string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.state.SelectedTitle = title
	snap, seq := v.publishLocked()
	v.mu.Unlock()

	v.notify(snap, seq)
}

// FetchRecommendations loads books similar to the selected title. It is a
// no-op without a selection. It returns once the fetch resolved.
func (v *View) FetchRecommendations(ctx context.Context) {
	v.mu.Lock()
	title := v.state.SelectedTitle
	v.mu.Unlock()

	v.fetch(ctx, title, v.src.Recommend)
}

// FetchByAuthor loads books by an author; the selected title is untouched.
func (v *View) FetchByAuthor(ctx context.Context, name string) {
	v.fetch(ctx, name, v.src.ByAuthor)
}

// FetchByCategory loads books of a category; the selected title is untouched.
func (v *View) FetchByCategory(ctx context.Context, name string) {
	v.fetch(ctx, name, v.src.ByCategory)
}

// Search lets the service match query against titles, authors and categories.
func (v *View) Search(ctx context.Context, query string) {
	v.fetch(ctx, query, v.src.Search)
}

// fetch runs the Loading -> Idle|Error cycle. Every call takes a new
// generation; an outcome is applied only if no later call was issued.
func (v *View) fetch(ctx context.Context, arg string, call func(context.Context, string) ([]book.Book, error)) {
	if arg == "" {
		return
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.gen++
	gen := v.gen
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state.Status = Loading()
	v.state.Results = nil
	snap, seq := v.publishLocked()
	v.mu.Unlock()

	defer cancel()
	v.notify(snap, seq)

	ctx = logger.ContextWithID(ctx, uuid.NewString())
	log := logger.For(ctx).WithField("generation", gen)
	books, err := call(ctx, arg)

	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		metrics.StaleResponsesTotal.Inc()
		log.Debug("view.fetch.stale")
		return
	}
	v.cancel = nil

	var remote *source.RemoteError
	switch {
	case errors.As(err, &remote) && strings.TrimSpace(remote.Message) != "":
		v.state.Status = Error(remote.Message)
	case err != nil:
		log.WithError(err).Warn("view.fetch.failed")
		v.state.Status = Error(GenericErrorMessage)
	default:
		v.state.Results = books
		v.state.Status = Idle()
	}
	snap, seq = v.publishLocked()
	v.mu.Unlock()

	v.notify(snap, seq)
}

// Close cancels in-flight fetches and discards the state. Outcomes that
// arrive afterwards are dropped.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.state = State{}
	v.mu.Unlock()
}

// publishLocked copies the state for a listener and stamps it. v.mu must be held.
func (v *View) publishLocked() (State, uint64) {
	v.seq++
	return v.state.clone(), v.seq
}

func (v *View) notify(s State, seq uint64) {
	if v.onChange == nil {
		return
	}
	v.deliverMu.Lock()
	defer v.deliverMu.Unlock()
	if seq <= v.delivered {
		return
	}
	v.delivered = seq
	v.onChange(s)
}
