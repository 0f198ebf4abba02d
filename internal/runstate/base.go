package runstate

import (
	"sync"

	"github.com/tevino/abool"
)

// Base is embedded by every lifecycle component (writer.Base, source.Base,
// router.Router, engine.Engine). It holds the RunState and CAS-guards
// transitions so that initialize/start/stop are safe to call concurrently
// from any goroutine and never panic — illegal calls are no-ops returning
// false, per §4.1.
//
// transitioning is an abool.AtomicBool that is set from a Begin* call until
// its Finish* call. IsRunning checks it before taking mu; State and the
// Begin*/Finish* methods go through mu only.
type Base struct {
	mu             sync.Mutex
	state          State
	transitioning  *abool.AtomicBool
	initSucceeded  bool
}

// NewBase constructs a Base in the Created state.
func NewBase() *Base {
	return &Base{
		state:         Created,
		transitioning: abool.New(),
	}
}

// State returns the current RunState, read under mu. While a transition is
// in flight (between a Begin* call and its Finish*) it returns
// Transitioning; once the transition lands it returns the landed state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsRunning reports whether no transition is in flight and the state is
// Running. It checks the transitioning flag first, then reads State.
func (b *Base) IsRunning() bool {
	return !b.transitioning.IsSet() && b.State() == Running
}

// BeginInitialize attempts to move into Transitioning ahead of an
// initialize() call. It returns (true, false) when the call should proceed,
// (true, true) when a prior successful initialize makes this call a no-op
// success (idempotent-after-success, §4.1/§8), or (false, false) when the
// current state does not permit initialize.
func (b *Base) BeginInitialize() (proceed, alreadyDone bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initSucceeded {
		return false, true
	}
	if !CanInitialize(b.state) {
		return false, false
	}
	b.state = Transitioning
	b.transitioning.Set()
	return true, false
}

// FinishInitialize lands the transition on Initialized or
// FailedInitialization.
func (b *Base) FinishInitialize(ok bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ok {
		b.state = Initialized
		b.initSucceeded = true
	} else {
		b.state = FailedInitialization
	}
	b.transitioning.UnSet()
	return ok
}

// BeginStart attempts to move into Transitioning ahead of a start() call.
func (b *Base) BeginStart() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !CanStart(b.state) {
		return false
	}
	b.state = Transitioning
	b.transitioning.Set()
	return true
}

// FinishStart lands the transition on Running or Failed.
func (b *Base) FinishStart(ok bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ok {
		b.state = Running
	} else {
		b.state = Failed
	}
	b.transitioning.UnSet()
	return ok
}

// BeginStop attempts to move into Transitioning ahead of a stop() call.
func (b *Base) BeginStop() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !CanStop(b.state) {
		return false
	}
	b.state = Transitioning
	b.transitioning.Set()
	return true
}

// FinishStop lands the transition on Stopped or Failed.
func (b *Base) FinishStop(ok bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ok {
		b.state = Stopped
	} else {
		b.state = Failed
	}
	b.transitioning.UnSet()
	return ok
}

// SetFailed is the signal a plug-in hook calls when it cannot continue
// (TransientTransportError, §7). It transitions straight to Failed without
// going through stop() — the monitor loop observes Failed and restarts the
// component. Valid from Running or Transitioning; a no-op elsewhere.
func (b *Base) SetFailed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Running || b.state == Transitioning {
		b.state = Failed
	}
}
