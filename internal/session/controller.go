// Package session implements the player session controller: a per-viewer,
// per-video finite state machine orchestrating lookup, access check and URL
// resolution. The machine itself holds no I/O; side effects are confined to
// the injected lookup and resolver, and the rendering layer observes the
// machine through snapshots.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/models"
)

// LookupTimeout is the fixed budget for a metadata lookup. Exceeding it
// cancels the underlying request and surfaces Error(TIMEOUT).
const LookupTimeout = 10 * time.Second

// State of the session machine.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateDenied  State = "denied"
	StateError   State = "error"
	StateReady   State = "ready"
)

// EventType names the externally dispatchable events. Completion of the
// async lookup and resolution steps is internal.
type EventType string

const (
	// EventStart begins the pipeline: lookup, access check, URL resolution.
	EventStart EventType = "start"
	// EventRetry clears an error and restarts the whole pipeline from the
	// lookup, since the error may stem from stale video data.
	EventRetry EventType = "retry"
	// EventRegenerateURL re-resolves only the playback URL, for when the
	// consumer detects the signed URL has expired.
	EventRegenerateURL EventType = "regenerate_url"
)

// Event is dispatched into the machine.
type Event struct {
	Type EventType
}

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	State      State
	Video      *models.Video
	Verdict    access.Verdict
	URL        *models.PlayableURL
	URLLoading bool
	ErrType    ErrorType
	Message    string
}

// Lookup is the video metadata dependency.
type Lookup interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// Resolver is the playback URL dependency.
type Resolver interface {
	ResolvePlayableURL(ctx context.Context, video *models.Video, verdict access.Verdict) (models.PlayableURL, error)
}

// Controller is the session state machine. One instance per viewer per
// video; no state is shared across sessions.
type Controller struct {
	lookup        Lookup
	resolver      Resolver
	identity      IdentityProvider
	logger        *logrus.Logger
	videoID       string
	lookupTimeout time.Duration

	mu           sync.Mutex
	state        State
	video        *models.Video
	verdict      access.Verdict
	url          *models.PlayableURL
	urlLoading   bool
	errType      ErrorType
	message      string
	gen          int  // lookup generation; stale async results are discarded
	regenPending bool // de-duplicates in-flight regeneration

	subs    map[int]*subscriber
	nextSub int

	unsubscribeRole func()
}

// NewController wires a session for one video. Dependencies are injected
// explicitly; there is no ambient auth state.
func NewController(videoID string, lookup Lookup, resolver Resolver, identity IdentityProvider, logger *logrus.Logger) *Controller {
	c := &Controller{
		lookup:        lookup,
		resolver:      resolver,
		identity:      identity,
		logger:        logger,
		videoID:       videoID,
		lookupTimeout: LookupTimeout,
		state:         StateIdle,
		subs:          make(map[int]*subscriber),
	}
	// A role change invalidates any verdict already on screen, so the whole
	// pipeline is re-run.
	c.unsubscribeRole = identity.OnRoleChange(func(access.Role) {
		c.restart(context.Background())
	})
	return c
}

// Close detaches the controller from the identity provider and invalidates
// any in-flight work. Terminal; meant for unmount/navigation-away.
func (c *Controller) Close() {
	if c.unsubscribeRole != nil {
		c.unsubscribeRole()
	}
	c.mu.Lock()
	c.gen++
	c.regenPending = false
	for id, sub := range c.subs {
		sub.close()
		delete(c.subs, id)
	}
	c.mu.Unlock()
}

// Dispatch feeds an event into the machine. Unknown or currently invalid
// events are ignored, keeping the machine total.
func (c *Controller) Dispatch(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventStart:
		c.restart(ctx)
	case EventRetry:
		c.mu.Lock()
		if c.state != StateError {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		c.restart(ctx)
	case EventRegenerateURL:
		c.regenerate(ctx)
	}
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to be called with a snapshot after every
// transition. Snapshots are delivered in transition order, one at a time per
// subscriber. The returned function unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	sub := newSubscriber(fn)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		if s, ok := c.subs[id]; ok {
			delete(c.subs, id)
			s.close()
		}
		c.mu.Unlock()
	}
}

// restart invalidates any in-flight request and runs the pipeline from the
// lookup. Last request wins: results tagged with an older generation are
// dropped so a slow stale response cannot overwrite newer state.
func (c *Controller) restart(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = StateLoading
	c.video = nil
	c.verdict = access.Verdict{}
	c.url = nil
	c.urlLoading = false
	c.errType = ""
	c.message = ""
	c.regenPending = false
	c.notifyLocked()
	c.mu.Unlock()

	role := c.identity.Role()
	go c.runLookup(ctx, gen, role)
}

// runLookup performs the metadata fetch and the access check.
func (c *Controller) runLookup(ctx context.Context, gen int, role access.Role) {
	lookupCtx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	video, err := c.lookup.GetVideo(lookupCtx, c.videoID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return // stale response, a newer start/retry superseded us
	}

	if err != nil {
		errType := classify(err)
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			errType = ErrorTimeout
		}
		c.state = StateError
		c.errType = errType
		c.message = ErrorMessage(errType)
		c.logger.WithFields(logrus.Fields{
			"video_id":   c.videoID,
			"error_type": errType,
			"error":      err.Error(),
		}).Warn("Video lookup failed")
		c.notifyLocked()
		return
	}

	verdict := access.CheckAccess(video, role)
	c.video = video
	c.verdict = verdict

	if !verdict.HasAccess {
		c.state = StateDenied
		c.message = DenialMessage(verdict.Reason)
		c.notifyLocked()
		return
	}

	c.state = StateReady
	c.urlLoading = true
	c.notifyLocked()
	go c.runResolve(ctx, gen, video, verdict)
}

func (c *Controller) runResolve(ctx context.Context, gen int, video *models.Video, verdict access.Verdict) {
	url, err := c.resolver.ResolvePlayableURL(ctx, video, verdict)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.regenPending = false

	if err != nil {
		errType := classify(err)
		c.state = StateError
		c.urlLoading = false
		c.url = nil
		c.errType = errType
		c.message = ErrorMessage(errType)
		c.logger.WithFields(logrus.Fields{
			"video_id":   c.videoID,
			"error_type": errType,
			"error":      err.Error(),
		}).Warn("Playback URL resolution failed")
		c.notifyLocked()
		return
	}

	c.url = &url
	c.urlLoading = false
	c.notifyLocked()
}

// regenerate re-resolves the playback URL without re-fetching metadata.
// Signed URL issuance is not idempotent, so a second trigger while one is
// already pending is a no-op rather than a second request.
func (c *Controller) regenerate(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateReady || c.video == nil || c.urlLoading || c.regenPending {
		c.mu.Unlock()
		return
	}
	c.regenPending = true
	c.urlLoading = true
	gen := c.gen
	video := c.video
	verdict := c.verdict
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.WithField("video_id", c.videoID).Info("Regenerating playback URL")
	go c.runResolve(ctx, gen, video, verdict)
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		Video:      c.video,
		Verdict:    c.verdict,
		URL:        c.url,
		URLLoading: c.urlLoading,
		ErrType:    c.errType,
		Message:    c.message,
	}
}

// notifyLocked queues the current snapshot for every subscriber. Each
// subscriber drains its queue on a dedicated goroutine, so callbacks observe
// transitions in the order they happened (a stray goroutine per notification
// could deliver an old Loading after Ready) and may call back into the
// controller without deadlocking on the mutex.
func (c *Controller) notifyLocked() {
	snap := c.snapshotLocked()
	for _, sub := range c.subs {
		sub.push(snap)
	}
}

// subscriber serializes snapshot delivery to one callback.
type subscriber struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Snapshot
	closed bool
}

func newSubscriber(fn func(Snapshot)) *subscriber {
	s := &subscriber{}
	s.cond = sync.NewCond(&s.mu)
	go s.run(fn)
	return s
}

func (s *subscriber) run(fn func(Snapshot)) {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		snap := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn(snap)
	}
}

func (s *subscriber) push(snap Snapshot) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, snap)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

// close stops delivery after the already-queued snapshots drain.
func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
}
