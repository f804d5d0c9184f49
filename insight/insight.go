// Package insight keeps the engagement aggregate of one piece of content on
// the client side. Shares and reactions are applied optimistically to the
// local copy; reactions of the same type are batched into a single write
// per debounce window.
package insight

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/gommon/log"

	"github.com/dheerajdev/folio/engagement"
)

// DefaultDebounce is the quiet period after the last reaction of a type
// before the accumulated count is written.
const DefaultDebounce = 500 * time.Millisecond

const writeTimeout = 10 * time.Second

// Status is the load state of an Aggregator.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// API is the engagement backend an Aggregator reads from and writes to.
type API interface {
	Detail(ctx context.Context, slug string) (*engagement.ContentDetail, error)
	RecordView(ctx context.Context, slug string, req engagement.ViewRequest) error
	RecordShare(ctx context.Context, slug string, req engagement.ShareRequest) error
	RecordReaction(ctx context.Context, slug string, req engagement.ReactionRequest) error
}

// Options identifies the content an Aggregator is bound to.
type Options struct {
	Slug         string
	ContentType  engagement.ContentType
	ContentTitle string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock driving the debounce timers.
func WithClock(c clock.Clock) Option {
	return func(a *Aggregator) { a.clock = c }
}

// WithLogger sets the logger failed writes are reported to.
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithoutViewCount keeps Mount from recording a view.
func WithoutViewCount() Option {
	return func(a *Aggregator) { a.countView = false }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(a *Aggregator) { a.debounce = d }
}

type pendingReaction struct {
	count   int
	section string
	gen     uint64
	timer   *clock.Timer
}

// Aggregator holds the engagement state of one slug for as long as the
// content is on screen. It is safe for concurrent use.
type Aggregator struct {
	api       API
	opts      Options
	clock     clock.Clock
	logger    *log.Logger
	debounce  time.Duration
	countView bool

	mu       sync.Mutex
	idle     *sync.Cond
	status   Status
	err      error
	data     engagement.ContentDetail
	pending  map[engagement.ReactionType]*pendingReaction
	closed   bool
	inflight int
}

// New returns an idle Aggregator for opts.Slug.
func New(api API, opts Options, options ...Option) *Aggregator {
	a := &Aggregator{
		api:       api,
		opts:      opts,
		clock:     clock.New(),
		debounce:  DefaultDebounce,
		countView: true,
		data:      initialValue(),
		pending:   make(map[engagement.ReactionType]*pendingReaction),
	}
	a.idle = sync.NewCond(&a.mu)
	for _, opt := range options {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.New("insight")
	}
	return a
}

func initialValue() engagement.ContentDetail {
	return engagement.ContentDetail{MetaSection: map[string]engagement.SectionMeta{}}
}

// Mount records a view in the background, unless WithoutViewCount was
// given, then loads the aggregate. A failed view is dropped.
func (a *Aggregator) Mount(ctx context.Context) error {
	if a.countView && a.opts.Slug != "" {
		req := engagement.ViewRequest{ContentType: a.opts.ContentType, ContentTitle: a.opts.ContentTitle}
		a.background("view", func(ctx context.Context) error {
			return a.api.RecordView(ctx, a.opts.Slug, req)
		})
	}
	return a.Load(ctx)
}

// Load fetches the current aggregate. On failure the status becomes Error
// and the last known data is kept.
func (a *Aggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	a.status = Loading
	a.mu.Unlock()

	detail, err := a.api.Detail(ctx, a.opts.Slug)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.status = Error
		a.err = err
		return err
	}
	a.data = *detail
	if a.data.MetaSection == nil {
		a.data.MetaSection = map[string]engagement.SectionMeta{}
	}
	a.status = Ready
	a.err = nil
	return nil
}

// Status returns the load state and the error of the last failed Load.
func (a *Aggregator) Status() (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status, a.err
}

// IsLoading reports whether a Load is in progress.
func (a *Aggregator) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status == Loading
}

// Data returns a copy of the current aggregate, including optimistic
// updates not yet confirmed by a Load.
func (a *Aggregator) Data() engagement.ContentDetail {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.data
	out.MetaSection = make(map[string]engagement.SectionMeta, len(a.data.MetaSection))
	for k, v := range a.data.MetaSection {
		out.MetaSection[k] = v
	}
	return out
}

// AddShare counts a share locally and writes it in the background. A failed
// write is not rolled back; the next Load reconciles the count.
func (a *Aggregator) AddShare(t engagement.ShareType) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.data.Meta.Shares++
	a.data.MetaUser.Shares++
	a.mu.Unlock()

	req := engagement.ShareRequest{ContentType: a.opts.ContentType, ContentTitle: a.opts.ContentTitle, Type: t}
	a.background("share", func(ctx context.Context) error {
		return a.api.RecordShare(ctx, a.opts.Slug, req)
	})
}

// AddReaction counts a reaction locally and schedules a batched write for
// its type. Each call restarts the debounce window of that type only; the
// section of the last call in a window is the one written. A batch that
// reaches engagement.MaxBatchCount is written at once.
func (a *Aggregator) AddReaction(t engagement.ReactionType, section string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.data.Meta.Reactions++
	a.data.Meta.ReactionsDetail.Add(t, 1)
	a.data.MetaUser.ReactionsDetail.Add(t, 1)

	p := a.pending[t]
	if p == nil {
		p = &pendingReaction{}
		a.pending[t] = p
	}
	p.count++
	p.section = section
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.count >= engagement.MaxBatchCount {
		req := a.takeLocked(t, p)
		a.goLocked(func() { a.writeReaction(req) })
		return
	}
	gen := p.gen
	p.timer = a.clock.AfterFunc(a.debounce, func() { a.flush(t, gen) })
}

// flush writes the count accumulated for t when no reaction of that type
// arrived since the timer for gen was armed.
func (a *Aggregator) flush(t engagement.ReactionType, gen uint64) {
	a.mu.Lock()
	p := a.pending[t]
	if a.closed || p == nil || p.gen != gen || p.count == 0 {
		a.mu.Unlock()
		return
	}
	req := a.takeLocked(t, p)
	a.inflight++
	a.mu.Unlock()

	defer a.done()
	a.writeReaction(req)
}

// takeLocked snapshots the pending batch of t and resets it, so reactions
// arriving during the write start a new batch. a.mu must be held.
func (a *Aggregator) takeLocked(t engagement.ReactionType, p *pendingReaction) engagement.ReactionRequest {
	req := engagement.ReactionRequest{
		ContentType:  a.opts.ContentType,
		ContentTitle: a.opts.ContentTitle,
		Type:         t,
		Count:        p.count,
		Section:      p.section,
	}
	p.count = 0
	p.section = ""
	p.timer = nil
	return req
}

// writeReaction issues one batched write. A failed write loses its batch.
func (a *Aggregator) writeReaction(req engagement.ReactionRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := a.api.RecordReaction(ctx, a.opts.Slug, req); err != nil {
		a.logger.Warnf("Failed to record %d %s reactions for %s: %v", req.Count, req.Type, a.opts.Slug, err)
	}
}

func (a *Aggregator) background(what string, write func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goLocked(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := write(ctx); err != nil {
			a.logger.Warnf("Failed to record %s for %s: %v", what, a.opts.Slug, err)
		}
	})
}

// goLocked runs fn in a goroutine tracked by Wait. a.mu must be held.
func (a *Aggregator) goLocked(fn func()) {
	a.inflight++
	go func() {
		defer a.done()
		fn()
	}()
}

func (a *Aggregator) done() {
	a.mu.Lock()
	a.inflight--
	if a.inflight == 0 {
		a.idle.Broadcast()
	}
	a.mu.Unlock()
}

// Dispose cancels every pending reaction batch. No write is issued by the
// Aggregator afterwards; writes already in flight are left to finish.
func (a *Aggregator) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for t, p := range a.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(a.pending, t)
	}
}

// Wait blocks until writes already in flight have returned. Batches still
// waiting for their debounce window are not waited for.
func (a *Aggregator) Wait() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.inflight > 0 {
		a.idle.Wait()
	}
}
