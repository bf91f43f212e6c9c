package dialog

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind identifies an independent dialog lifecycle in the note editor.
type Kind string

const (
	KindCreate Kind = "create"
	KindEdit   Kind = "edit"
	KindView   Kind = "view"
)

// Kinds lists every dialog kind the coordinator supervises.
var Kinds = []Kind{KindCreate, KindEdit, KindView}

// State is the lifecycle state of one dialog kind.
type State int

const (
	StateClosed State = iota
	StatePreparing
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StatePreparing:
		return "preparing"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	}
	return "unknown"
}

const (
	// DefaultOpenSettleDelay lets a previous dialog's close animation settle
	// before a new dialog becomes visible.
	DefaultOpenSettleDelay = 50 * time.Millisecond
	// DefaultCloseTeardownDelay matches the close animation duration; teardown
	// waits for it so the dialog is never torn down mid-animation.
	DefaultCloseTeardownDelay = 300 * time.Millisecond
)

// Presenter resets ambient presentation state (stray styles, pointer capture)
// left behind by interrupted dialog animations. Implementations must be
// idempotent; the coordinator may invoke it repeatedly.
type Presenter interface {
	ResetPresentationState() error
}

// DraftResetter clears the note draft during create/edit teardown.
type DraftResetter interface {
	Reset()
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDelays overrides the open-settle and close-teardown delays.
func WithDelays(openSettle, closeTeardown time.Duration) Option {
	return func(c *Coordinator) {
		c.openSettleDelay = openSettle
		c.closeTeardownDelay = closeTeardown
	}
}

// Coordinator sequences open/close lifecycles for the create, edit, and view
// dialogs. Each kind moves Closed -> Preparing -> Open -> Closing -> Closed.
// Every transition request bumps a per-kind generation; timer callbacks carry
// the generation they were scheduled under and are dropped when it no longer
// matches, so a rapid open/close sequence never lets a superseded timer fire
// against newer state.
type Coordinator struct {
	presenter Presenter
	draft     DraftResetter
	log       *zap.Logger

	openSettleDelay    time.Duration
	closeTeardownDelay time.Duration

	mu     sync.Mutex
	states map[Kind]*dialogState
}

type dialogState struct {
	state State
	gen   uint64
	timer *time.Timer
}

// NewCoordinator creates a coordinator with all dialogs closed.
func NewCoordinator(presenter Presenter, draft DraftResetter, log *zap.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		presenter:          presenter,
		draft:              draft,
		log:                log,
		openSettleDelay:    DefaultOpenSettleDelay,
		closeTeardownDelay: DefaultCloseTeardownDelay,
		states:             make(map[Kind]*dialogState, len(Kinds)),
	}
	for _, k := range Kinds {
		c.states[k] = &dialogState{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state of the given kind.
func (c *Coordinator) State(kind Kind) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[kind].state
}

// IsVisible reports whether the dialog is currently shown. Visibility drops
// the moment a close is requested, before teardown runs.
func (c *Coordinator) IsVisible(kind Kind) bool {
	return c.State(kind) == StateOpen
}

// Open requests the dialog be shown. The pre-open presentation reset runs
// first; if it fails the request is dropped and the dialog returns to Closed
// (the failure is logged, never surfaced). On success the dialog becomes
// visible after the settle delay. Opening a kind that is mid-close supersedes
// its pending teardown. Returns false when the request was dropped, either
// because the kind was already active or because initialization failed.
func (c *Coordinator) Open(kind Kind) bool {
	c.mu.Lock()
	st := c.states[kind]
	if st.state == StateOpen || st.state == StatePreparing {
		c.mu.Unlock()
		return false
	}
	st.state = StatePreparing
	st.gen++
	gen := st.gen
	c.stopTimerLocked(st)

	// Opening the create dialog always starts from an empty draft.
	if kind == KindCreate && c.draft != nil {
		c.draft.Reset()
	}
	c.mu.Unlock()

	if err := c.resetPresentation(); err != nil {
		c.log.Warn("dialog_open_init_failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		c.mu.Lock()
		if st.gen == gen && st.state == StatePreparing {
			st.state = StateClosed
		}
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if st.gen != gen || st.state != StatePreparing {
		// Superseded while initializing.
		return false
	}
	st.timer = time.AfterFunc(c.openSettleDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if st.gen != gen || st.state != StatePreparing {
			return
		}
		st.state = StateOpen
		c.log.Debug("dialog_opened", zap.String("kind", string(kind)))
	})
	return true
}

// Close requests the dialog be hidden. Visibility drops immediately; teardown
// (draft reset for create/edit, plus the global cleanup pass) runs after the
// teardown delay so the close animation can finish. No-op when the kind is
// neither Preparing nor Open.
func (c *Coordinator) Close(kind Kind) {
	c.mu.Lock()
	st := c.states[kind]
	if st.state != StateOpen && st.state != StatePreparing {
		c.mu.Unlock()
		return
	}
	st.state = StateClosing
	st.gen++
	gen := st.gen
	c.stopTimerLocked(st)

	st.timer = time.AfterFunc(c.closeTeardownDelay, func() {
		c.mu.Lock()
		if st.gen != gen || st.state != StateClosing {
			c.mu.Unlock()
			return
		}
		st.state = StateClosed
		resetDraft := kind != KindView && !c.anyActiveLocked()
		allClosed := c.allClosedLocked()
		c.mu.Unlock()

		// The draft is shared across the editing context: skip the reset when
		// another dialog became active during the teardown delay, otherwise a
		// settled close would wipe a newly opened dialog's draft.
		if resetDraft && c.draft != nil {
			c.draft.Reset()
		}
		c.Cleanup()
		if allClosed {
			c.log.Debug("all_dialogs_closed", zap.String("last_kind", string(kind)))
		}
	})
	c.mu.Unlock()
}

// Unmount tears the whole editing context down synchronously, bypassing the
// teardown delays: all timers are cancelled, every kind goes straight to
// Closed, the draft is reset, and the cleanup pass runs. Used when the editor
// itself goes away, so no state can leak across a full teardown.
func (c *Coordinator) Unmount() {
	c.mu.Lock()
	for _, k := range Kinds {
		st := c.states[k]
		st.gen++
		c.stopTimerLocked(st)
		st.state = StateClosed
	}
	c.mu.Unlock()

	if c.draft != nil {
		c.draft.Reset()
	}
	c.Cleanup()
}

// Cleanup runs the global presentation cleanup pass. It is idempotent and
// best-effort: failures are logged and swallowed so teardown always completes.
func (c *Coordinator) Cleanup() {
	if err := c.resetPresentation(); err != nil {
		c.log.Warn("dialog_cleanup_failed", zap.Error(err))
	}
}

// AllClosed reports whether every dialog kind is Closed.
func (c *Coordinator) AllClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allClosedLocked()
}

func (c *Coordinator) allClosedLocked() bool {
	for _, k := range Kinds {
		if c.states[k].state != StateClosed {
			return false
		}
	}
	return true
}

func (c *Coordinator) anyActiveLocked() bool {
	for _, k := range Kinds {
		s := c.states[k].state
		if s == StatePreparing || s == StateOpen {
			return true
		}
	}
	return false
}

func (c *Coordinator) stopTimerLocked(st *dialogState) {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}

// resetPresentation invokes the presenter, converting panics into logged
// errors so a broken presenter can never break dialog sequencing.
func (c *Coordinator) resetPresentation() (err error) {
	if c.presenter == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("presenter_panic_recovered", zap.Any("panic", r))
			err = nil
		}
	}()
	return c.presenter.ResetPresentationState()
}
