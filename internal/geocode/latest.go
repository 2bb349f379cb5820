package geocode

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed query is sent.
const DefaultDebounce = 350 * time.Millisecond

// Result is the outcome of one debounced search. Err is informational: a failed
// search still delivers an empty Places so the caller can clear its list.
type Result struct {
	Query  string
	Places []Place
	Err    error
}

// LatestSearcher debounces a stream of queries and delivers only the newest result.
// Submitting a query cancels the pending timer and the in-flight request of the previous one.
type LatestSearcher struct {
	searcher Searcher
	delay    time.Duration
	limit    int

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
	results chan Result
}

// NewLatestSearcher creates a searcher. A non-positive delay uses DefaultDebounce.
func NewLatestSearcher(s Searcher, delay time.Duration, limit int) *LatestSearcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &LatestSearcher{
		searcher: s,
		delay:    delay,
		limit:    limit,
		results:  make(chan Result, 1),
	}
}

// Results delivers the latest result. Unread results are replaced by newer ones.
// The channel is closed by Close.
func (l *LatestSearcher) Results() <-chan Result {
	return l.results
}

// Submit schedules a search for text.
func (l *LatestSearcher) Submit(text string) {
	text = strings.TrimSpace(text)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	l.seq++
	l.abortLocked()

	if len([]rune(text)) < MinQueryLength {
		l.publishLocked(Result{Query: text, Places: []Place{}})
		return
	}

	seq := l.seq
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.wg.Add(1)
	l.timer = time.AfterFunc(l.delay, func() {
		defer l.wg.Done()
		l.run(ctx, seq, text)
	})
}

// Close stops pending work, waits for in-flight searches to return and closes Results.
func (l *LatestSearcher) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.abortLocked()
	l.mu.Unlock()

	l.wg.Wait()
	close(l.results)
}

func (l *LatestSearcher) run(ctx context.Context, seq uint64, text string) {
	places, err := l.searcher.Search(ctx, text, l.limit)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq || l.closed || ctx.Err() != nil {
		return
	}
	if err != nil || places == nil {
		places = []Place{}
	}
	l.publishLocked(Result{Query: text, Places: places, Err: err})
}

// abortLocked stops the pending timer and cancels the in-flight request.
func (l *LatestSearcher) abortLocked() {
	if l.timer != nil {
		if l.timer.Stop() {
			l.wg.Done()
		}
		l.timer = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *LatestSearcher) publishLocked(r Result) {
	select {
	case <-l.results:
	default:
	}
	l.results <- r
}
