// Package router implements the Router (§4.8): the component a source's
// producer thread calls into, and the only thing standing between a raw
// (source, topic, payload) tuple and a destination TransformerWriter. It
// owns an atomically-swappable RouteTable, a sharded staging WorkPool per
// worker (for source→worker affinity), a refresher goroutine, and a
// MetaRegistry.
package router

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/serialx/hashring"

	"firestige.xyz/ingestd/internal/metrics"
	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/registry"
	"firestige.xyz/ingestd/internal/routetable"
	"firestige.xyz/ingestd/internal/runstate"
	"firestige.xyz/ingestd/internal/workpool"
)

const (
	defaultTargetThreads = 3
	refreshInterval      = 3600 * time.Second // §6 documented constant
	refreshCheckInterval = 10 * time.Second
	stopGracePeriod      = 8 * time.Second
)

// Config carries everything Router.Initialize needs beyond the
// lifecycle-internal state.
type Config struct {
	TargetThreads int // default 3 if <= 0, per §4.8
	Registry      registry.MetaRegistry
	Writers       routetable.WriterFactory
	Transformers  routetable.TransformerFactory
}

// Router is the message-routing supervisor described by §4.8.
type Router struct {
	*runstate.Base

	targetThreads int
	reg           registry.MetaRegistry
	writers       routetable.WriterFactory
	transformers  routetable.TransformerFactory

	table atomic.Pointer[routetable.RouteTable]
	ring  *hashring.HashRing
	shard []*workpool.Pool

	lastRefresh atomic.Int64 // unix nanoseconds

	done chan struct{}
	wg   sync.WaitGroup
}

// New constructs an uninitialized Router.
func New() *Router {
	return &Router{Base: runstate.NewBase()}
}

// GetState satisfies the lifecycle contract shared by every component.
func (r *Router) GetState() runstate.State {
	return r.Base.State()
}

// Sources returns the current RouteTable's source set, for diagnostics.
func (r *Router) Sources() []string {
	return r.table.Load().Sources()
}

// Refresh forces an out-of-cycle route table refresh, bypassing the 3600s
// timer — used by the control plane's "reload" command (§9 SIGHUP).
func (r *Router) Refresh() {
	r.refresh()
}

// Initialize reads TargetThreads (default 3), builds one WorkPool shard per
// worker and a consistent-hash ring over shard labels, instantiates the
// MetaRegistry, performs the first refresh, and lands on Initialized (§4.8).
func (r *Router) Initialize(cfg Config) bool {
	proceed, alreadyDone := r.BeginInitialize()
	if alreadyDone {
		return true
	}
	if !proceed {
		return false
	}

	threads := cfg.TargetThreads
	if threads <= 0 {
		threads = defaultTargetThreads
	}
	r.targetThreads = threads
	r.reg = cfg.Registry
	r.writers = cfg.Writers
	r.transformers = cfg.Transformers

	r.shard = make([]*workpool.Pool, threads)
	labels := make([]string, threads)
	for i := 0; i < threads; i++ {
		r.shard[i] = workpool.New()
		labels[i] = fmt.Sprintf("shard-%d", i)
	}
	r.ring = hashring.New(labels)

	r.table.Store(routetable.New())

	if !r.reg.Initialize() {
		return r.FinishInitialize(false)
	}

	r.refresh()

	return r.FinishInitialize(true)
}

// shardFor returns the WorkPool shard a given source is consistently hashed
// to, giving stable source→worker affinity across refreshes (§9 supplemented
// feature — generalizes the teacher's flowHash/dispatchLoop).
func (r *Router) shardFor(source string) *workpool.Pool {
	label, ok := r.ring.GetNode(source)
	if !ok {
		return r.shard[0]
	}
	for i, s := range r.shard {
		if fmt.Sprintf("shard-%d", i) == label {
			return s
		}
	}
	return r.shard[0]
}

// WriteText stages a text record into the router (§4.6 Sink interface).
func (r *Router) WriteText(source, topic, text string) bool {
	ok := r.shardFor(source).WriteText(source, topic, text)
	r.recordIngested(source, ok)
	return ok
}

// WriteTextSeq stages a text-sequence record.
func (r *Router) WriteTextSeq(source, topic string, seq []string) bool {
	ok := r.shardFor(source).WriteTextSeq(source, topic, seq)
	r.recordIngested(source, ok)
	return ok
}

// WriteBinary stages a binary record.
func (r *Router) WriteBinary(source, topic string, b []byte) bool {
	ok := r.shardFor(source).WriteBinary(source, topic, b)
	r.recordIngested(source, ok)
	return ok
}

// WriteBinarySeq stages a binary-sequence record.
func (r *Router) WriteBinarySeq(source, topic string, seq [][]byte) bool {
	ok := r.shardFor(source).WriteBinarySeq(source, topic, seq)
	r.recordIngested(source, ok)
	return ok
}

func (r *Router) recordIngested(source string, accepted bool) {
	if accepted {
		metrics.RecordsIngestedTotal.WithLabelValues(source).Inc()
	}
}

// Start builds targetThreads scavenger goroutines plus one refresher
// goroutine (§4.8).
func (r *Router) Start() bool {
	if !r.BeginStart() {
		return false
	}
	r.done = make(chan struct{})

	for i := range r.shard {
		r.wg.Add(1)
		go r.scavenge(i)
	}
	r.wg.Add(1)
	go r.refreshLoop()

	return r.FinishStart(true)
}

// Stop signals all workers to exit, waits up to ~8s, then proceeds
// regardless (§4.8 "wait up to ~8s for workers to observe and exit; cancel
// any remaining").
func (r *Router) Stop() bool {
	if !r.BeginStop() {
		return false
	}
	close(r.done)

	exited := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(stopGracePeriod):
		slog.Warn("router: workers did not exit within grace period, proceeding with shutdown")
	}

	return r.FinishStop(true)
}

func (r *Router) scavenge(i int) {
	defer r.wg.Done()
	pool := r.shard[i]
	for {
		rec, ok := pool.Take(r.done)
		if !ok {
			return
		}
		r.dispatch(rec)
	}
}

// dispatch looks up the current RouteTable for (source, topic); a miss is an
// UnrouteableRecord, silently dropped (§7). Writer failures are logged and
// swallowed at this boundary — the record is lost but the worker survives
// (§4.8).
func (r *Router) dispatch(rec workpool.Record) {
	table := r.table.Load()
	tw := table.Lookup(rec.Source, rec.Topic)
	if tw == nil {
		metrics.RecordsDroppedTotal.WithLabelValues(rec.Source, "unrouteable").Inc()
		return
	}

	p := rec.Payload
	var ok bool
	switch p.Kind {
	case model.Text:
		ok = tw.Write(rec.Source, rec.Topic, p.Text)
	case model.TextSeq:
		ok = tw.WriteSeq(rec.Source, rec.Topic, p.TextSeq)
	case model.Binary:
		ok = tw.WriteBinary(rec.Source, rec.Topic, p.Binary)
	case model.BinarySeq:
		ok = tw.WriteBinarySeq(rec.Source, rec.Topic, p.BinarySeq)
	}
	if !ok {
		slog.Debug("router: write failed, record dropped", "source", rec.Source, "topic", rec.Topic)
		metrics.RecordsDroppedTotal.WithLabelValues(rec.Source, "write_failed").Inc()
		return
	}
	metrics.RecordsRoutedTotal.WithLabelValues(rec.Source, rec.Topic).Inc()
}

func (r *Router) refreshLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(refreshCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.recordQueueDepths()
			last := time.Unix(0, r.lastRefresh.Load())
			if time.Since(last) > refreshInterval {
				r.refresh()
			}
		}
	}
}

// recordQueueDepths publishes each shard's per-kind staging depth to
// WorkPoolQueueDepth. Called once per refreshCheckInterval tick rather than
// per record, since a gauge only needs to be fresh on metrics-scrape
// cadence, not write cadence.
func (r *Router) recordQueueDepths() {
	for i, shard := range r.shard {
		label := fmt.Sprintf("shard-%d", i)
		text, textSeq, binary, binarySeq := shard.Depths()
		metrics.WorkPoolQueueDepth.WithLabelValues(label, "text").Set(float64(text))
		metrics.WorkPoolQueueDepth.WithLabelValues(label, "textSeq").Set(float64(textSeq))
		metrics.WorkPoolQueueDepth.WithLabelValues(label, "binary").Set(float64(binary))
		metrics.WorkPoolQueueDepth.WithLabelValues(label, "binarySeq").Set(float64(binarySeq))
	}
}

// refresh implements §4.8's five-step refresh cycle: clone the current
// table, fetch descriptors, apply-or-retain, atomically publish, record the
// timestamp. correlationID ties one refresh cycle's log lines together.
func (r *Router) refresh() {
	// satori/go.uuid's NewV4 returns (UUID, error); on a failed random read
	// the ID is the nil UUID, which still serves to tag this cycle's logs.
	id, _ := uuid.NewV4()
	correlationID := id.String()

	current := r.table.Load()
	clone := current.Clone()

	descriptors, err := r.reg.Fetch()
	if err != nil {
		slog.Error("router: registry fetch failed, retaining previous route table",
			"correlation_id", correlationID, "error", err)
		r.lastRefresh.Store(time.Now().UnixNano())
		metrics.RouteTableRefreshTotal.WithLabelValues("retained").Inc()
		return
	}

	clone.UpdateRoutes(descriptors, r.writers, r.transformers)
	r.table.Store(clone)
	r.lastRefresh.Store(time.Now().UnixNano())
	metrics.RouteTableRefreshTotal.WithLabelValues("applied").Inc()

	slog.Info("router: route table refreshed",
		"correlation_id", correlationID, "sources", len(clone.Sources()))
}
