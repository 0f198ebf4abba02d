// Package engine implements the Engine supervisor (§4.9): the composition
// root that owns the Router, every configured source and writer instance,
// and the monitor loop that restarts anything observed Failed. It replaces
// the teacher's otus.GetAppContext() global singleton (internal/otus/otus.go)
// with an explicit, constructed-by-the-caller object — nothing here is
// package-level mutable state.
package engine

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"firestige.xyz/ingestd/internal/config"
	"firestige.xyz/ingestd/internal/metrics"
	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/plugin"
	"firestige.xyz/ingestd/internal/router"
	"firestige.xyz/ingestd/internal/runstate"
)

// monitorMinSleep is the floor on the monitor loop's between-pass sleep: an
// explicit fix for the source's "monitor never sleeps" open bug (§4.9, §9).
// A jitter is added on top so many Engines in a fleet don't all scan in
// lockstep.
const monitorMinSleep = 50 * time.Millisecond

// Engine is the top-level supervisor described by §4.9.
type Engine struct {
	*runstate.Base

	deployName string
	plugins    *plugin.Registry

	mu      sync.RWMutex
	sources map[string]model.Source
	writers map[string]model.Writer
	router  *router.Router

	monitorDone chan struct{}
	monitorWG   sync.WaitGroup
}

// New constructs an uninitialized Engine bound to a plug-in type registry.
func New(plugins *plugin.Registry) *Engine {
	return &Engine{
		Base:    runstate.NewBase(),
		plugins: plugins,
		sources: make(map[string]model.Source),
		writers: make(map[string]model.Writer),
		router:  router.New(),
	}
}

// GetState satisfies the lifecycle contract.
func (e *Engine) GetState() runstate.State {
	return e.Base.State()
}

// Initialize runs the strict five-step sequence of §4.9: load configuration
// (already parsed by the caller), register type descriptors (done by the
// caller populating e.plugins before calling Initialize), instantiate and
// initialize sources, then writers, then the Router. A source or writer of
// unknown type, or one that fails to initialize, is logged and skipped; a
// Router that fails to initialize lands the Engine on FailedInitialization.
func (e *Engine) Initialize(cfg *config.Config) bool {
	proceed, alreadyDone := e.BeginInitialize()
	if alreadyDone {
		return true
	}
	if !proceed {
		return false
	}

	e.deployName = cfg.DeployName

	for name, instCfg := range cfg.Sources {
		src, ok := e.plugins.NewSource(instCfg.Type)
		if !ok {
			slog.Error("engine: unknown source type, skipping", "instance", name, "type", instCfg.Type)
			continue
		}
		if !src.Initialize(name) {
			slog.Error("engine: source failed to initialize, skipping", "instance", name, "type", instCfg.Type)
			continue
		}
		e.sources[name] = src
	}

	for name, instCfg := range cfg.Writers {
		w, ok := e.plugins.NewWriter(instCfg.Type)
		if !ok {
			slog.Error("engine: unknown writer type, skipping", "instance", name, "type", instCfg.Type)
			continue
		}
		if !w.Initialize(name) {
			slog.Error("engine: writer failed to initialize, skipping", "instance", name, "type", instCfg.Type)
			continue
		}
		e.writers[name] = w
	}

	reg := cfg.BuildRegistry()

	ok := e.router.Initialize(router.Config{
		TargetThreads: cfg.TargetThreads,
		Registry:      reg,
		Writers:       e.writerFactory,
		Transformers:  e.transformerFactory,
	})
	if !ok {
		slog.Error("engine: router failed to initialize")
		e.recordStates()
		return e.FinishInitialize(false)
	}

	e.recordStates()
	return e.FinishInitialize(true)
}

// recordStates publishes every owned component's current runstate.State
// (plus the Engine's own) to ComponentState, labeled by kind and instance
// name.
func (e *Engine) recordStates() {
	metrics.ComponentState.WithLabelValues("engine", e.deployName).Set(metrics.StateValue(int(e.GetState())))
	metrics.ComponentState.WithLabelValues("router", e.deployName).Set(metrics.StateValue(int(e.router.GetState())))

	e.mu.RLock()
	defer e.mu.RUnlock()
	for name, s := range e.sources {
		metrics.ComponentState.WithLabelValues("source", name).Set(metrics.StateValue(int(s.GetState())))
	}
	for name, w := range e.writers {
		metrics.ComponentState.WithLabelValues("writer", name).Set(metrics.StateValue(int(w.GetState())))
	}
}

func (e *Engine) writerFactory(name string) (model.Writer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.writers[name]
	return w, ok
}

func (e *Engine) transformerFactory(name, info string) (model.Transformer, bool) {
	tr, ok := e.plugins.NewTransformer(name)
	if !ok {
		return nil, false
	}
	if !tr.Initialize(info) {
		return nil, false
	}
	return tr, true
}

// Start brings up components in strict order — writers, then the Router,
// then sources — fanning each group out concurrently via conc.WaitGroup
// (§4.9). A failure anywhere transitions the Engine to Failed but the
// monitor may retry once running.
func (e *Engine) Start() bool {
	if !e.BeginStart() {
		return false
	}
	defer e.recordStates()

	if !e.startGroup(e.writerList()) {
		return e.FinishStart(false)
	}
	if !e.router.Start() {
		return e.FinishStart(false)
	}
	if !e.startGroup(e.sourceList()) {
		return e.FinishStart(false)
	}

	e.monitorDone = make(chan struct{})
	e.monitorWG.Add(1)
	go e.monitorLoop()

	return e.FinishStart(true)
}

// Stop tears components down in strict reverse order — monitor, sources,
// Router, writers — fanning each group out concurrently (§4.9).
func (e *Engine) Stop() bool {
	if !e.BeginStop() {
		return false
	}
	defer e.recordStates()

	close(e.monitorDone)
	e.monitorWG.Wait()

	okSources := e.stopGroup(e.sourceList())
	okRouter := e.router.Stop()
	okWriters := e.stopGroup(e.writerList())

	return e.FinishStop(okSources && okRouter && okWriters)
}

type lifecycleComponent interface {
	Start() bool
	Stop() bool
	GetState() runstate.State
}

func (e *Engine) writerList() []lifecycleComponent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]lifecycleComponent, 0, len(e.writers))
	for _, w := range e.writers {
		out = append(out, w)
	}
	return out
}

func (e *Engine) sourceList() []lifecycleComponent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]lifecycleComponent, 0, len(e.sources))
	for _, s := range e.sources {
		out = append(out, s)
	}
	return out
}

func (e *Engine) startGroup(components []lifecycleComponent) bool {
	var wg conc.WaitGroup
	results := make([]bool, len(components))
	for i, c := range components {
		i, c := i, c
		wg.Go(func() { results[i] = c.Start() })
	}
	wg.Wait()
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}

func (e *Engine) stopGroup(components []lifecycleComponent) bool {
	var wg conc.WaitGroup
	results := make([]bool, len(components))
	for i, c := range components {
		i, c := i, c
		wg.Go(func() { results[i] = c.Stop() })
	}
	wg.Wait()
	ok := true
	for _, r := range results {
		ok = ok && r
	}
	return ok
}

// monitorLoop scans writers, the Router, and sources; anything observed
// Failed is re-started. It never busy-loops: each pass is followed by a
// jittered sleep of at least monitorMinSleep (§4.9, fixing the source's open
// "monitor never sleeps" bug, see §9).
func (e *Engine) monitorLoop() {
	defer e.monitorWG.Done()
	for {
		select {
		case <-e.monitorDone:
			return
		default:
		}

		for _, c := range e.writerList() {
			if c.GetState() == runstate.Failed {
				c.Start()
			}
		}
		if e.router.GetState() == runstate.Failed {
			e.router.Start()
		}
		for _, c := range e.sourceList() {
			if c.GetState() == runstate.Failed {
				c.Start()
			}
		}

		e.recordStates()

		sleep := monitorMinSleep + time.Duration(rand.Int63n(int64(monitorMinSleep)))
		select {
		case <-e.monitorDone:
			return
		case <-time.After(sleep):
		}
	}
}

// RouteTableSources exposes the Router's currently routed source set, used
// by internal/control status responses.
func (e *Engine) RouteTableSources() []string {
	return e.router.Sources()
}

// RefreshRoutes forces an out-of-cycle route table refresh, used by the
// control plane's "reload" command (§9 SIGHUP).
func (e *Engine) RefreshRoutes() {
	e.router.Refresh()
}
