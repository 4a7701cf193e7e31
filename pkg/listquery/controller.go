package listquery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the phase of the most recent fetch.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of a controller.
type State[T any] struct {
	Query      Query
	Items      []T
	TotalCount int
	Loading    bool
	Status     Status
	Err        error
}

type options struct {
	ctx            context.Context
	initial        Partial
	notifier       Notifier
	logger         *zap.Logger
	searchDebounce time.Duration
}

// Option configures a Controller.
type Option func(*options)

// WithInitialQuery overrides the default query.
func WithInitialQuery(p Partial) Option {
	return func(o *options) { o.initial = p }
}

// WithNotifier sets the sink failures are reported to.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSearchDebounce delays fetches triggered by SetSearch until typing has
// paused for d. Other mutations fetch immediately.
func WithSearchDebounce(d time.Duration) Option {
	return func(o *options) { o.searchDebounce = d }
}

// WithContext sets the parent context passed to fetch functions.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Controller owns the query state of one list view and keeps its result in
// sync with the backend. Every query change schedules one fetch; only the
// most recently scheduled fetch may commit its result.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	notifier Notifier
	logger   *zap.Logger
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	query     Query
	items     []T
	total     int
	loading   bool
	status    Status
	err       error
	seq       uint64
	timer     *time.Timer
	closed    bool
	listeners map[int]func(State[T])
	nextID    int
	version   uint64

	// pubMu orders delivery to listeners. delivered is the version of the
	// last snapshot handed out; latest is the newest one still queued.
	pubMu     sync.Mutex
	delivered uint64
	latest    *event[T]
	draining  bool
}

// event is a snapshot bound for the listeners registered when it was taken.
type event[T any] struct {
	version   uint64
	state     State[T]
	listeners []func(State[T])
}

// New creates a controller and starts the first fetch.
func New[T any](fetch FetchFunc[T], opts ...Option) *Controller[T] {
	o := options{
		ctx:      context.Background(),
		notifier: nopNotifier{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(o.ctx)
	c := &Controller[T]{
		fetch:     fetch,
		notifier:  o.notifier,
		logger:    o.logger,
		debounce:  o.searchDebounce,
		ctx:       ctx,
		cancel:    cancel,
		query:     NewQuery(o.initial),
		items:     []T{},
		status:    StatusIdle,
		listeners: make(map[int]func(State[T])),
	}

	c.mu.Lock()
	c.scheduleLocked(0)
	c.mu.Unlock()
	return c
}

// State returns a snapshot of the controller.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Query returns a copy of the current query.
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// Subscribe registers fn to be called with a snapshot after state changes.
// Snapshots reach fn in the order they were taken; one superseded while
// another delivery is running is skipped, so fn always ends on the newest
// state. fn may call the controller's mutators. The returned function
// removes it.
func (c *Controller[T]) Subscribe(fn func(State[T])) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SetSearch replaces the search term and returns to the first page.
func (c *Controller[T]) SetSearch(search string) {
	c.mutate(c.debounce, func(q *Query) {
		q.Search = search
		q.Page = 1
	})
}

// SetFilters replaces all filters and returns to the first page.
func (c *Controller[T]) SetFilters(f Filters) {
	c.mutate(0, func(q *Query) {
		q.Filters = f.Clone()
		if q.Filters == nil {
			q.Filters = Filters{}
		}
		q.Page = 1
	})
}

// SetFilter sets a single filter and returns to the first page. A nil or
// empty value keeps the key but it is not sent to the backend.
func (c *Controller[T]) SetFilter(key string, v any) {
	c.mutate(0, func(q *Query) {
		q.Filters = q.Filters.Set(key, v)
		q.Page = 1
	})
}

// SetSort changes the ordering and returns to the first page.
func (c *Controller[T]) SetSort(key string, dir Direction) {
	c.mutate(0, func(q *Query) {
		q.Sort = Sort{Key: key, Direction: dir}
		q.Page = 1
	})
}

// SetPage moves to page n. Values below 1 select the first page.
func (c *Controller[T]) SetPage(n int) {
	c.mutate(0, func(q *Query) {
		q.Page = max(n, 1)
	})
}

// SetPageSize changes the page size. The current page is kept.
func (c *Controller[T]) SetPageSize(n int) {
	c.mutate(0, func(q *Query) {
		q.PageSize = max(n, 1)
	})
}

// Refetch repeats the fetch for the current query.
func (c *Controller[T]) Refetch() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.scheduleLocked(0)
	ev := c.eventLocked()
	c.mu.Unlock()

	c.deliver(ev)
}

// Wait blocks until no fetch is pending or in flight.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// Close stops the controller. Pending debounced fetches are dropped, the
// context of in-flight fetches is cancelled and their results discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil && c.timer.Stop() {
		c.wg.Done()
	}
	c.timer = nil
	c.listeners = map[int]func(State[T]){}
	c.mu.Unlock()

	c.cancel()
}

func (c *Controller[T]) mutate(delay time.Duration, fn func(q *Query)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.query.Clone()
	fn(&next)
	if next.Equal(c.query) {
		c.mu.Unlock()
		return
	}
	c.query = next
	c.scheduleLocked(delay)
	ev := c.eventLocked()
	c.mu.Unlock()

	c.deliver(ev)
}

// scheduleLocked issues a new request sequence number and starts the fetch,
// after delay when positive. Any pending delayed fetch is superseded.
func (c *Controller[T]) scheduleLocked(delay time.Duration) {
	c.seq++
	seq := c.seq
	params := Transform(c.query)
	c.loading = true
	c.status = StatusLoading

	if c.timer != nil {
		if c.timer.Stop() {
			c.wg.Done()
		}
		c.timer = nil
	}

	c.wg.Add(1)
	if delay > 0 {
		c.timer = time.AfterFunc(delay, func() { c.run(seq, params) })
		return
	}
	go c.run(seq, params)
}

func (c *Controller[T]) run(seq uint64, params Params) {
	defer c.wg.Done()

	resp, err := c.call(params)

	var (
		result Result[T]
		failed error
	)
	if err != nil {
		failed = &TransportError{Err: err}
	} else {
		result, failed = Settle(resp)
	}

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded list result",
			zap.Uint64("seq", seq),
			zap.Error(failed),
		)
		return
	}
	c.loading = false
	if failed != nil {
		c.items = []T{}
		c.total = 0
		c.status = StatusError
		c.err = failed
	} else {
		c.items = result.Items
		c.total = result.TotalCount
		c.status = StatusSuccess
		c.err = nil
	}
	ev := c.eventLocked()
	c.mu.Unlock()

	if failed != nil {
		msg := userMessage(failed)
		c.logger.Warn("list fetch failed",
			zap.Uint64("seq", seq),
			zap.String("message", msg),
			zap.Error(failed),
		)
		c.notifier.Notify(LevelError, msg)
	} else {
		c.logger.Debug("list fetch committed",
			zap.Uint64("seq", seq),
			zap.Int("items", len(result.Items)),
			zap.Int("total", result.TotalCount),
		)
	}
	c.deliver(ev)
}

// call invokes the fetch function, turning a panic into an error.
func (c *Controller[T]) call(params Params) (resp *Response[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	if c.fetch == nil {
		return nil, fmt.Errorf("no fetch function")
	}
	return c.fetch(c.ctx, params)
}

func (c *Controller[T]) snapshotLocked() State[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Query:      c.query.Clone(),
		Items:      items,
		TotalCount: c.total,
		Loading:    c.loading,
		Status:     c.status,
		Err:        c.err,
	}
}

func (c *Controller[T]) listenersLocked() []func(State[T]) {
	out := make([]func(State[T]), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

func (c *Controller[T]) eventLocked() event[T] {
	c.version++
	return event[T]{
		version:   c.version,
		state:     c.snapshotLocked(),
		listeners: c.listenersLocked(),
	}
}

// deliver hands ev to its listeners unless a newer snapshot has already
// gone out. Only one goroutine delivers at a time; events that arrive
// meanwhile, including from inside a listener, are coalesced and the
// delivering goroutine passes on the newest before it returns.
func (c *Controller[T]) deliver(ev event[T]) {
	c.pubMu.Lock()
	if ev.version <= c.delivered || (c.latest != nil && ev.version <= c.latest.version) {
		c.pubMu.Unlock()
		return
	}
	c.latest = &ev
	if c.draining {
		c.pubMu.Unlock()
		return
	}
	c.draining = true
	for c.latest != nil {
		next := c.latest
		c.latest = nil
		c.delivered = next.version
		c.pubMu.Unlock()
		for _, fn := range next.listeners {
			fn(next.state)
		}
		c.pubMu.Lock()
	}
	c.draining = false
	c.pubMu.Unlock()
}
