// Package writer implements the abstract writer runloop (§4.5), grounded on
// the teacher's internal/task/reporter_wrapper.go batchLoop: a single
// consumer goroutine draining a channel into a plug-in's hook methods, with
// the plug-in boundary expressed as an injected interface (Hooks here,
// plugin.Reporter there) rather than a subclass chain. Base carries the
// RunState machine and a WorkPool; a plug-in supplies Hooks, and
// NewTextBase/NewBinaryBase adapt the codec boundary so a plug-in only ever
// implements one side.
package writer

import (
	"time"

	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/runstate"
	"firestige.xyz/ingestd/internal/workpool"
)

// stopPollInterval and stopPollCount implement §4.5's "waits up to 45s
// (three 15-second polls) for the consumer to notice the state change".
const (
	stopPollInterval = 15 * time.Second
	stopPollCount    = 3
	shutdownGrace    = 60 * time.Second
)

// Hooks is the plug-in contract a concrete writer supplies to Base. Init and
// Stop may block briefly (connection setup/teardown); WriteText/WriteBinary
// run on the single consumer goroutine and must not block indefinitely.
type Hooks interface {
	// Init receives setFailed so the plug-in can call it later, from any
	// goroutine, when it loses its external connection and cannot continue
	// (TransientTransportError, §7) — the monitor then restarts it.
	Init(name string, setFailed func()) bool
	WriteText(source, topic string, text string) bool
	WriteTextSeq(source, topic string, seq []string) bool
	WriteBinary(source, topic string, b []byte) bool
	WriteBinarySeq(source, topic string, seq [][]byte) bool
	Stop() bool
}

// Base implements model.Writer by deferring all work through a WorkPool and
// a single consumer goroutine that round-robins the four queues via
// workpool.Pool.Take, invoking the matching Hooks method for each popped
// record (§4.5).
type Base struct {
	*runstate.Base
	hooks  Hooks
	name   string
	pool   *workpool.Pool
	done   chan struct{}
	exited chan struct{}
}

// NewBase constructs a writer.Base around the given plug-in hooks.
func NewBase(hooks Hooks) *Base {
	return &Base{
		Base:  runstate.NewBase(),
		hooks: hooks,
		pool:  workpool.New(),
	}
}

// GetState satisfies model.Writer; runstate.Base already exposes State(),
// but the interface names it GetState to match §4.1's vocabulary.
func (b *Base) GetState() runstate.State {
	return b.Base.State()
}

// Initialize runs the plug-in's Init hook under the CAS-guarded transition
// (§4.1); idempotent after a prior success.
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

// Start launches the single consumer goroutine (§4.5).
func (b *Base) Start() bool {
	if !b.BeginStart() {
		return false
	}
	b.done = make(chan struct{})
	b.exited = make(chan struct{})
	go b.consumeLoop()
	return b.FinishStart(true)
}

// Stop signals the consumer to exit, waits up to 45s (three 15s polls), then
// runs the plug-in Stop hook and awaits a bounded (≤60s) shutdown.
func (b *Base) Stop() bool {
	if !b.BeginStop() {
		return false
	}
	close(b.done)

	exited := b.waitExit(stopPollInterval, stopPollCount)

	ok := b.hooks.Stop()
	if !exited {
		// Consumer didn't notice in time; give it one more bounded grace
		// period before declaring the stop failed (§5 "graceful up to 60s,
		// then shutdownNow-equivalent").
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

func (b *Base) consumeLoop() {
	defer close(b.exited)
	for {
		if b.GetState() != runstate.Running {
			return
		}
		rec, ok := b.pool.Take(b.done)
		if !ok {
			return
		}
		b.dispatch(rec)
	}
}

func (b *Base) dispatch(rec workpool.Record) {
	p := rec.Payload
	switch p.Kind {
	case model.Text:
		b.hooks.WriteText(rec.Source, rec.Topic, p.Text)
	case model.TextSeq:
		b.hooks.WriteTextSeq(rec.Source, rec.Topic, p.TextSeq)
	case model.Binary:
		b.hooks.WriteBinary(rec.Source, rec.Topic, p.Binary)
	case model.BinarySeq:
		b.hooks.WriteBinarySeq(rec.Source, rec.Topic, p.BinarySeq)
	}
}

// WriteText stages a single text record (§4.2/§4.5: append and return
// immediately).
func (b *Base) WriteText(source, topic, text string) bool {
	return b.pool.WriteText(source, topic, text)
}

// WriteTextSeq stages an ordered text sequence.
func (b *Base) WriteTextSeq(source, topic string, seq []string) bool {
	return b.pool.WriteTextSeq(source, topic, seq)
}

// WriteBinary stages a single binary record.
func (b *Base) WriteBinary(source, topic string, bts []byte) bool {
	return b.pool.WriteBinary(source, topic, bts)
}

// WriteBinarySeq stages an ordered binary sequence.
func (b *Base) WriteBinarySeq(source, topic string, seq [][]byte) bool {
	return b.pool.WriteBinarySeq(source, topic, seq)
}
