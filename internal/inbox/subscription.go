package inbox

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/sagar7778/emailtemp/internal/models"
	"github.com/sagar7778/emailtemp/internal/session"
	"github.com/sagar7778/emailtemp/internal/tracing"
)

// State is the subscription lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateError    State = "error"
	StateStopped  State = "stopped"
)

// Snapshot is a point-in-time copy of a subscription's visible state.
type Snapshot struct {
	Messages   []models.MessageSummary
	State      State
	Err        string
	Generation uint64
	LastSynced time.Time
}

// Subscription maintains the live message list for one mailbox. At most one
// fetch is in flight at any time; starting a new fetch cancels the previous
// one, and results are applied only if their generation is still current, so
// a slow response can never clobber a newer request's result.
type Subscription struct {
	id       string
	engine   *Engine
	interval time.Duration

	hints   chan struct{}
	resets  chan struct{}
	updates chan struct{}
	stop    chan struct{}

	stopOnce sync.Once

	mu             sync.Mutex
	mailbox        *models.Mailbox
	messages       []models.MessageSummary
	state          State
	errMsg         string
	generation     uint64
	lastSynced     time.Time
	inflightCancel context.CancelFunc
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Updates signals after every applied fetch result. Closed on Stop.
func (s *Subscription) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot returns a copy of the current visible state.
func (s *Subscription) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]models.MessageSummary, len(s.messages))
	copy(messages, s.messages)

	return Snapshot{
		Messages:   messages,
		State:      s.state,
		Err:        s.errMsg,
		Generation: s.generation,
		LastSynced: s.lastSynced,
	}
}

// Refresh requests an out-of-band fetch, typically on a push hint. It never
// blocks; a hint arriving while one is already pending is coalesced.
func (s *Subscription) Refresh() {
	select {
	case s.hints <- struct{}{}:
	default:
	}
}

// SetMailbox swaps the mailbox identity. The timer restarts and any fetch in
// flight for the old identity is superseded.
func (s *Subscription) SetMailbox(mailbox *models.Mailbox) {
	s.mu.Lock()
	s.mailbox = mailbox
	s.messages = nil
	s.errMsg = ""
	if s.state != StateStopped {
		s.state = StateIdle
	}
	s.mu.Unlock()

	s.requestReset()
}

// SetInterval changes the poll cadence and restarts the timer.
func (s *Subscription) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()

	s.requestReset()
}

// Stop tears the subscription down: the in-flight request is cancelled, the
// timer stops, and the updates channel closes, regardless of which of those
// is still live.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.state = StateStopped
		if s.inflightCancel != nil {
			s.inflightCancel()
			s.inflightCancel = nil
		}
		close(s.updates)
		s.mu.Unlock()

		close(s.stop)
	})
}

func (s *Subscription) requestReset() {
	select {
	case s.resets <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	s.beginFetch()

	ticker := time.NewTicker(s.currentInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.beginFetch()
		case <-s.hints:
			s.beginFetch()
		case <-s.resets:
			ticker.Reset(s.currentInterval())
			s.beginFetch()
		}
	}
}

func (s *Subscription) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// beginFetch starts a fetch unless the subscription is stopped or the
// mailbox is incomplete. An incomplete mailbox is an idle no-op, not an
// error.
func (s *Subscription) beginFetch() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}

	mailbox := s.mailbox
	if !mailbox.Complete() {
		s.state = StateIdle
		s.mu.Unlock()
		return
	}

	if s.inflightCancel != nil {
		s.inflightCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.inflightCancel = cancel

	s.generation++
	generation := s.generation
	s.state = StateFetching
	s.mu.Unlock()

	go func() {
		s.fetch(ctx, generation, mailbox)
		cancel()
	}()
}

func (s *Subscription) fetch(ctx context.Context, generation uint64, mailbox *models.Mailbox) {
	span, ctx := tracing.StartTracerSpan(ctx, "Subscription.fetch")
	defer span.Finish()
	tracing.TagComponentEngine(span)
	tracing.TagMailbox(span, mailbox.ID)
	tracing.TagProvider(span, mailbox.Provider)

	messages, updated, err := s.listMessages(ctx, span, mailbox)
	s.apply(ctx, generation, messages, updated, err)
}

func (s *Subscription) listMessages(ctx context.Context, span opentracing.Span, mailbox *models.Mailbox) ([]models.MessageSummary, *models.Mailbox, error) {
	provider, err := s.engine.registry.Resolve(mailbox.Provider)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}

	messages, updated, err := provider.ListMessages(ctx, session.ResolveForCall(mailbox))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}
	return messages, updated, nil
}

// apply commits a fetch result. Results from superseded generations or
// cancelled contexts are discarded even if the transport could not abort the
// call itself.
func (s *Subscription) apply(ctx context.Context, generation uint64, messages []models.MessageSummary, updated *models.Mailbox, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}
	if generation != s.generation {
		return
	}
	if ctx.Err() != nil {
		return
	}

	if updated != nil {
		// The adapter refreshed its credential state; keep only the redacted
		// projection on our side of the boundary.
		s.mailbox = session.Materialize(updated)
	}

	if err != nil {
		// Transient failures never clear visible data; the next tick
		// attempts recovery.
		s.state = StateError
		s.errMsg = "failed to refresh inbox: " + err.Error()
		if s.engine.log != nil {
			s.engine.log.Warnf("inbox fetch failed for mailbox %s: %v", s.mailbox.ID, err)
		}
	} else {
		s.messages = messages
		s.state = StateIdle
		s.errMsg = ""
		s.lastSynced = time.Now()
	}

	select {
	case s.updates <- struct{}{}:
	default:
	}
}
