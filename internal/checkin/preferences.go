package checkin

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oremi-app/oremi-backend/internal/settings"
)

// DefaultDebounce is the quiet period before a multiplier edit is persisted.
const DefaultDebounce = 600 * time.Millisecond

// Controller owns the editable check-in preference state for one user:
// cadence, enabled flag, debounced persistence, and the "remember last
// cadence across disable/enable" policy. Updates are applied to local state
// optimistically; persistence failures are logged and reported but never
// roll the local state back — the settings subscription is the resync path.
type Controller struct {
	store    settings.Store
	userID   uuid.UUID
	debounce time.Duration
	onError  func(error)

	mu       sync.Mutex
	enabled  bool
	interval Interval
	every    int
	lastGood Cadence
	timer    *time.Timer
	closed   bool

	writes chan settings.Patch
	done   chan struct{}
	unsub  func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDebounce overrides the debounce delay (used by tests).
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce = d }
}

// WithErrorHandler installs a callback invoked when a persistence write
// fails. The failure is non-fatal either way.
func WithErrorHandler(fn func(error)) ControllerOption {
	return func(c *Controller) { c.onError = fn }
}

// NewController builds a controller seeded from the user's stored settings
// and subscribed to live updates.
func NewController(store settings.Store, userID uuid.UUID, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:    store,
		userID:   userID,
		debounce: DefaultDebounce,
		interval: IntervalNone,
		every:    1,
		lastGood: Cadence{Interval: IntervalDays, Every: 1},
		writes:   make(chan settings.Patch, 64),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.writeLoop()

	// The subscription fires once with current state, seeding local state.
	c.unsub = store.Subscribe(userID, c.applyRemote)
	return c
}

// writeLoop serializes persistence so a later edit's write cannot be
// overtaken and overwritten by an earlier, slower one.
func (c *Controller) writeLoop() {
	defer close(c.done)
	for patch := range c.writes {
		if err := c.store.Write(context.Background(), c.userID, patch); err != nil {
			slog.Error("check-in preference write failed", "user_id", c.userID, "error", err)
			if c.onError != nil {
				c.onError(err)
			}
		}
	}
}

// applyRemote folds a settings update from the store into local state.
// Updates that match the current local state (including echoes of the
// controller's own writes) are ignored to avoid flicker, and nothing is
// adopted while a debounced local edit is still pending — the local
// optimistic state wins until it flushes.
func (c *Controller) applyRemote(doc settings.Document) {
	cadence := Resolve(doc.CheckInFrequency)
	enabled := doc.CheckInOn()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.timer != nil {
		return
	}
	if enabled == c.enabled && cadence.Interval == c.interval && (cadence.Interval == IntervalNone || cadence.Every == c.every) {
		return
	}
	c.enabled = enabled
	c.interval = cadence.Interval
	if cadence.Interval != IntervalNone {
		c.every = cadence.Every
		c.lastGood = cadence
	}
}

// State returns the current cadence and enabled flag.
func (c *Controller) State() (Cadence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cadenceLocked(), c.enabled
}

func (c *Controller) cadenceLocked() Cadence {
	if c.interval == IntervalNone {
		return None
	}
	return Cadence{Interval: c.interval, Every: c.every}
}

// SetInterval changes the cadence unit and persists immediately. A valid
// recurring interval re-enables reminders and becomes the last known good
// configuration; unknown intervals collapse to none.
func (c *Controller) SetInterval(interval Interval) {
	if !validInterval(interval) {
		interval = IntervalNone
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	c.interval = interval

	if interval == IntervalNone {
		c.enqueueLocked(settings.Patch{CheckInFrequency: mustMarshal(None)})
		return
	}

	c.enabled = true
	c.lastGood = Cadence{Interval: interval, Every: c.every}
	c.enqueueLocked(fullPatch(c.lastGood))
}

// SetEvery updates the multiplier. Local state changes immediately for UI
// responsiveness; persistence waits for a quiet period so rapid edits
// collapse into a single write.
func (c *Controller) SetEvery(n int) {
	n = ClampEvery(n)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.every = n
	if c.interval == IntervalNone {
		return
	}

	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.debounce, c.flushEvery)
}

// flushEvery runs when the debounce timer fires. It persists the full
// configuration, which re-enables reminders, so local state must follow suit
// or the controller would report disabled while storage says enabled.
func (c *Controller) flushEvery() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = nil
	if c.closed || c.interval == IntervalNone {
		return
	}
	c.enabled = true
	c.lastGood = Cadence{Interval: c.interval, Every: c.every}
	c.enqueueLocked(fullPatch(c.lastGood))
}

// SetEnabled toggles reminders. Disabling remembers the active cadence and
// persists only the flag, leaving the cadence fields in storage untouched so
// re-enabling can restore them; enabling restores the last known good pair
// and persists the full configuration.
func (c *Controller) SetEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || on == c.enabled {
		return
	}

	c.stopTimerLocked()
	if !on {
		if c.interval != IntervalNone {
			c.lastGood = Cadence{Interval: c.interval, Every: c.every}
		}
		c.enabled = false
		off := false
		c.enqueueLocked(settings.Patch{CheckInEnabled: &off})
		return
	}

	c.enabled = true
	c.interval = c.lastGood.Interval
	c.every = c.lastGood.Every
	c.enqueueLocked(fullPatch(c.lastGood))
}

// Close cancels any pending debounced write, detaches the subscription and
// stops the write loop, draining writes already queued.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.unsub()
	close(c.writes)
	<-c.done
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) enqueueLocked(patch settings.Patch) {
	select {
	case c.writes <- patch:
	default:
		slog.Warn("check-in preference write queue full, dropping oldest", "user_id", c.userID)
		select {
		case <-c.writes:
		default:
		}
		c.writes <- patch
	}
}

func fullPatch(c Cadence) settings.Patch {
	on := true
	return settings.Patch{
		CheckInFrequency: mustMarshal(c),
		CheckInEnabled:   &on,
	}
}

func mustMarshal(c Cadence) json.RawMessage {
	raw, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}
	return raw
}
