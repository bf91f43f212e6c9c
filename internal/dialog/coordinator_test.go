package dialog

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

const (
	testSettle   = 10 * time.Millisecond
	testTeardown = 40 * time.Millisecond
)

type fakePresenter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakePresenter) ResetPresentationState() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *fakePresenter) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeDraft struct {
	mu     sync.Mutex
	resets int
	fields []string
}

func (d *fakeDraft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resets++
	d.fields = nil
}

func (d *fakeDraft) set(fields ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields = fields
}

func (d *fakeDraft) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.fields...)
}

func newTestCoordinator(p Presenter, d DraftResetter) *Coordinator {
	return NewCoordinator(p, d, zap.NewNop(), WithDelays(testSettle, testTeardown))
}

func TestCoordinator_OpenSettlesAfterDelay(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(&fakePresenter{}, &fakeDraft{})

	if !c.Open(KindEdit) {
		t.Fatal("Expected open request to be accepted")
	}
	if got := c.State(KindEdit); got != StatePreparing {
		t.Errorf("State immediately after open = %s, want preparing", got)
	}
	if c.IsVisible(KindEdit) {
		t.Error("Dialog must not be visible before the settle delay")
	}

	time.Sleep(3 * testSettle)
	if got := c.State(KindEdit); got != StateOpen {
		t.Errorf("State after settle delay = %s, want open", got)
	}
	if !c.IsVisible(KindEdit) {
		t.Error("Expected dialog visible after settle delay")
	}
}

func TestCoordinator_InitFailureAbortsOpen(t *testing.T) {
	t.Parallel()

	p := &fakePresenter{err: errors.New("stuck overlay")}
	c := newTestCoordinator(p, &fakeDraft{})

	if c.Open(KindCreate) {
		t.Error("Expected open to report failure when initialization fails")
	}
	time.Sleep(3 * testSettle)
	if got := c.State(KindCreate); got != StateClosed {
		t.Errorf("State after failed init = %s, want closed", got)
	}
	if c.IsVisible(KindCreate) {
		t.Error("No dialog may be shown after failed initialization")
	}
}

func TestCoordinator_CloseHidesImmediatelyTearsDownLater(t *testing.T) {
	t.Parallel()

	draft := &fakeDraft{}
	c := newTestCoordinator(&fakePresenter{}, draft)

	c.Open(KindEdit)
	time.Sleep(3 * testSettle)
	draft.set("title", "content")

	c.Close(KindEdit)
	if c.IsVisible(KindEdit) {
		t.Error("Visibility must drop immediately on close request")
	}
	if got := c.State(KindEdit); got != StateClosing {
		t.Errorf("State right after close = %s, want closing", got)
	}
	if len(draft.snapshot()) == 0 {
		t.Error("Draft must not be cleared before the teardown delay")
	}

	time.Sleep(3 * testTeardown)
	if got := c.State(KindEdit); got != StateClosed {
		t.Errorf("State after teardown delay = %s, want closed", got)
	}
	if len(draft.snapshot()) != 0 {
		t.Error("Expected draft cleared by edit teardown")
	}
}

func TestCoordinator_ViewTeardownKeepsDraft(t *testing.T) {
	t.Parallel()

	draft := &fakeDraft{}
	c := newTestCoordinator(&fakePresenter{}, draft)

	c.Open(KindView)
	time.Sleep(3 * testSettle)
	draft.set("loaded note")

	c.Close(KindView)
	time.Sleep(3 * testTeardown)

	if got := c.State(KindView); got != StateClosed {
		t.Fatalf("State = %s, want closed", got)
	}
	if len(draft.snapshot()) != 1 {
		t.Error("View teardown must not clear the draft")
	}
}

func TestCoordinator_OpenCreateWhileEditClosing(t *testing.T) {
	t.Parallel()

	p := &fakePresenter{}
	draft := &fakeDraft{}
	c := newTestCoordinator(p, draft)

	c.Open(KindEdit)
	time.Sleep(3 * testSettle)
	draft.set("edited title", "edited content", "tag")

	c.Close(KindEdit)
	// Within the edit teardown window, request the create dialog.
	initsBefore := p.callCount()
	if !c.Open(KindCreate) {
		t.Fatal("Expected create open to be accepted while edit is mid-close")
	}
	if p.callCount() <= initsBefore {
		t.Error("Expected create's pre-open initialization to run")
	}
	if len(draft.snapshot()) != 0 {
		t.Error("Create must start from an empty draft, with no edit leakage")
	}

	time.Sleep(3 * testTeardown)
	if got := c.State(KindCreate); got != StateOpen {
		t.Errorf("Create state = %s, want open", got)
	}
	if got := c.State(KindEdit); got != StateClosed {
		t.Errorf("Edit state = %s, want closed", got)
	}
	// The settled edit teardown must not have wiped the now-active create
	// context; any draft content typed after create opened survives.
	draft.set("fresh create text")
	time.Sleep(2 * testTeardown)
	if len(draft.snapshot()) == 0 {
		t.Error("Edit teardown wiped the create dialog's draft")
	}
}

func TestCoordinator_RapidCloseReopenCancelsStaleTeardown(t *testing.T) {
	t.Parallel()

	draft := &fakeDraft{}
	c := newTestCoordinator(&fakePresenter{}, draft)

	c.Open(KindEdit)
	time.Sleep(3 * testSettle)
	c.Close(KindEdit)
	// Reopen the same kind before its teardown delay elapses.
	if !c.Open(KindEdit) {
		t.Fatal("Expected reopen during closing to supersede the pending teardown")
	}
	draft.set("typed during reopened dialog")

	time.Sleep(3 * testTeardown)
	if got := c.State(KindEdit); got != StateOpen {
		t.Errorf("State after reopen = %s, want open", got)
	}
	if len(draft.snapshot()) == 0 {
		t.Error("Stale teardown timer fired after being superseded")
	}
}

func TestCoordinator_UnmountIsSynchronous(t *testing.T) {
	t.Parallel()

	p := &fakePresenter{}
	draft := &fakeDraft{}
	c := newTestCoordinator(p, draft)

	c.Open(KindEdit)
	time.Sleep(3 * testSettle)
	draft.set("in progress")

	c.Unmount()
	for _, k := range Kinds {
		if got := c.State(k); got != StateClosed {
			t.Errorf("State(%s) after unmount = %s, want closed", k, got)
		}
	}
	if len(draft.snapshot()) != 0 {
		t.Error("Unmount must reset the draft synchronously")
	}
	if p.callCount() == 0 {
		t.Error("Unmount must run the cleanup pass")
	}
}

func TestCoordinator_CleanupIsIdempotent(t *testing.T) {
	t.Parallel()

	p := &fakePresenter{}
	c := newTestCoordinator(p, &fakeDraft{})

	c.Cleanup()
	onceState := c.AllClosed()

	c.Cleanup()
	if c.AllClosed() != onceState {
		t.Error("Cleanup must not change dialog state")
	}
	for _, k := range Kinds {
		if got := c.State(k); got != StateClosed {
			t.Errorf("State(%s) after repeated cleanup = %s, want closed", k, got)
		}
	}
}

func TestCoordinator_CleanupSwallowsErrors(t *testing.T) {
	t.Parallel()

	p := &fakePresenter{err: errors.New("style reset failed")}
	c := newTestCoordinator(p, &fakeDraft{})

	// Must not panic and must leave state intact.
	c.Cleanup()
	if !c.AllClosed() {
		t.Error("Cleanup failure must not disturb dialog state")
	}
}

func TestCoordinator_DoubleOpenIsDropped(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(&fakePresenter{}, &fakeDraft{})
	if !c.Open(KindView) {
		t.Fatal("First open should succeed")
	}
	if c.Open(KindView) {
		t.Error("Second open of an active kind must be dropped")
	}
}

func TestCoordinator_CloseWhenClosedIsNoop(t *testing.T) {
	t.Parallel()

	draft := &fakeDraft{}
	c := newTestCoordinator(&fakePresenter{}, draft)

	c.Close(KindCreate)
	time.Sleep(2 * testTeardown)
	if draft.resets != 0 {
		t.Error("Closing an already-closed dialog must not touch the draft")
	}
}
