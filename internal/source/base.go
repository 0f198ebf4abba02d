// Package source implements the abstract source runloop (§4.6): the same
// lifecycle skeleton as internal/writer.Base, but the plug-in's Run is a
// producer that pushes records into a Sink (the Router) rather than a
// consumer draining a WorkPool — a source owns no WorkPool of its own.
package source

import (
	"time"

	"firestige.xyz/ingestd/internal/runstate"
)

const (
	stopPollInterval = 15 * time.Second
	stopPollCount    = 3
	shutdownGrace    = 60 * time.Second
)

// Sink is the narrow surface of the Router a source plug-in pushes records
// into: Router.write*(sourceName, topic, payload) per §4.6.
type Sink interface {
	WriteText(source, topic, text string) bool
	WriteTextSeq(source, topic string, seq []string) bool
	WriteBinary(source, topic string, b []byte) bool
	WriteBinarySeq(source, topic string, seq [][]byte) bool
}

// Hooks is the plug-in contract. Run is the producer body: it blocks on
// external I/O, pushing records into sink under sourceName, and must return
// promptly once done is closed.
type Hooks interface {
	// Init receives setFailed so the producer goroutine can call it later,
	// from Run, when it loses its external connection and cannot continue
	// (TransientTransportError, §7) — the monitor then restarts it.
	Init(name string, setFailed func()) bool
	Run(done <-chan struct{}, sink Sink, sourceName string)
	Stop() bool
}

// Base implements model.Source by running the plug-in's Run body on a
// single producer goroutine (§4.6).
type Base struct {
	*runstate.Base
	hooks  Hooks
	sink   Sink
	name   string
	done   chan struct{}
	exited chan struct{}
}

// NewBase constructs a source.Base around the given plug-in hooks and the
// Sink it should push records into.
func NewBase(hooks Hooks, sink Sink) *Base {
	return &Base{
		Base:  runstate.NewBase(),
		hooks: hooks,
		sink:  sink,
	}
}

// GetState satisfies model.Source.
func (b *Base) GetState() runstate.State {
	return b.Base.State()
}

// Initialize runs the plug-in's Init hook under the CAS-guarded transition.
func (b *Base) Initialize(name string) bool {
	proceed, alreadyDone := b.BeginInitialize()
	if alreadyDone {
		return true
	}
	if !proceed {
		return false
	}
	b.name = name
	ok := b.hooks.Init(name, b.Base.SetFailed)
	return b.FinishInitialize(ok)
}

// Start launches the producer goroutine.
func (b *Base) Start() bool {
	if !b.BeginStart() {
		return false
	}
	b.done = make(chan struct{})
	b.exited = make(chan struct{})
	go func() {
		defer close(b.exited)
		b.hooks.Run(b.done, b.sink, b.name)
	}()
	return b.FinishStart(true)
}

// Stop signals the producer to exit, waits up to 45s (three 15s polls),
// then runs the plug-in Stop hook and awaits a bounded (≤60s) shutdown.
func (b *Base) Stop() bool {
	if !b.BeginStop() {
		return false
	}
	close(b.done)

	exited := b.waitExit(stopPollInterval, stopPollCount)

	ok := b.hooks.Stop()
	if !exited {
		exited = b.waitExit(shutdownGrace, 1)
	}
	return b.FinishStop(ok && exited)
}

func (b *Base) waitExit(interval time.Duration, polls int) bool {
	for i := 0; i < polls; i++ {
		select {
		case <-b.exited:
			return true
		case <-time.After(interval):
		}
	}
	select {
	case <-b.exited:
		return true
	default:
		return false
	}
}
