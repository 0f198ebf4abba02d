// Package routetable implements the two-level (source, topic) → WriterHandler
// routing map: exact and suffix-wildcard topic match, an insert-update-prune
// reconciliation pass, and a structural (non-reflective) deep clone —
// grounded on §4.3 and the REDESIGN FLAG retiring the source's reflective
// deep-clone of nested maps.
package routetable

import (
	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/transform"
)

// WriterHandler pairs the transform name used to build a TransformerWriter
// with the TransformerWriter itself. The name is kept alongside for
// diagnostics/logging; routing only ever dispatches through TW.
type WriterHandler struct {
	TransformName string
	TW            *transform.TransformerWriter
}

// RouteTable is a nested mapping source → (topic → WriterHandler). It is
// write-once-then-readable (§4.3 concurrency discipline): the Router builds
// a new instance by cloning the current one, calls UpdateRoutes on the
// clone, then atomically swaps the published pointer. Lookups never
// observe a half-updated table because the RouteTable value itself is
// never mutated after being published — only a never-yet-published clone
// is mutated.
type RouteTable struct {
	routes map[string]map[string]WriterHandler
}

// New returns an empty RouteTable.
func New() *RouteTable {
	return &RouteTable{routes: make(map[string]map[string]WriterHandler)}
}

// Lookup resolves (source, topic) to a TransformerWriter. Returns nil if
// source is absent. Otherwise tries the exact topic key first; failing
// that, scans keys ending in "/*" and returns the first whose stripped
// prefix matches. Wildcard scan order is unspecified — the first match
// wins (§4.3, Open Question 4, deliberately left unresolved).
func (rt *RouteTable) Lookup(source, topic string) *transform.TransformerWriter {
	topics, ok := rt.routes[source]
	if !ok {
		return nil
	}
	if h, ok := topics[topic]; ok {
		return h.TW
	}
	for key, h := range topics {
		if isWildcardKey(key) && topicMatch(topic, key) {
			return h.TW
		}
	}
	return nil
}

// WriterFactory resolves a destination writer by its configured name; it is
// how UpdateRoutes checks "if... the destination writer exist[s] in the
// Engine" (§4.3) without RouteTable needing to import the Engine.
type WriterFactory func(name string) (model.Writer, bool)

// TransformerFactory builds a Transformer instance for a given
// transformName/transformInfo pair (the info string is passed to
// Transformer.Initialize). Returns ok=false if the name is unregistered —
// UpdateRoutes then treats the descriptor as having no eligible writer
// (skips it), matching the Engine's "omit, don't crash" InitializationError
// policy (§7).
type TransformerFactory func(name, info string) (model.Transformer, bool)

// UpdateRoutes reconciles rt against descriptors: for each descriptor whose
// destination writer exists (source existence is the caller's concern — a
// route's key is just a string, sources don't need to be pre-registered
// for dispatch to work once a source instance actually calls write()), it
// inserts or replaces the (source, topic) entry; after all inserts, any
// (source, topic) entry not present in descriptors is pruned, and any
// source left with an empty topic map is removed entirely.
func (rt *RouteTable) UpdateRoutes(descriptors []model.RouteDescriptor, writers WriterFactory, transformers TransformerFactory) {
	wanted := make(map[string]map[string]struct{}, len(descriptors))

	for _, d := range descriptors {
		w, ok := writers(d.DestProvider)
		if !ok {
			continue
		}

		var tr model.Transformer
		if d.HasTransform() {
			built, ok := transformers(d.TransformName(), d.TransformInfo())
			if !ok {
				continue
			}
			tr = built
		}

		tw := transform.New(tr, d.TransformName(), w, d.DestProvider, d.DestTopic, d.NormalizedBatchSize())

		topics, ok := rt.routes[d.SourceProvider]
		if !ok {
			topics = make(map[string]WriterHandler)
			rt.routes[d.SourceProvider] = topics
		}
		topics[d.SourceTopic] = WriterHandler{TransformName: d.TransformName(), TW: tw}

		srcWanted, ok := wanted[d.SourceProvider]
		if !ok {
			srcWanted = make(map[string]struct{})
			wanted[d.SourceProvider] = srcWanted
		}
		srcWanted[d.SourceTopic] = struct{}{}
	}

	rt.prune(wanted)
}

// prune removes every (source, topic) entry not present in wanted, then
// drops any source whose topic map becomes empty.
func (rt *RouteTable) prune(wanted map[string]map[string]struct{}) {
	for source, topics := range rt.routes {
		keep, sourceWanted := wanted[source]
		if !sourceWanted {
			delete(rt.routes, source)
			continue
		}
		for topic := range topics {
			if _, ok := keep[topic]; !ok {
				delete(topics, topic)
			}
		}
		if len(topics) == 0 {
			delete(rt.routes, source)
		}
	}
}

// Clone returns a structural deep copy of both map levels. WriterHandler
// values are shared by reference across the original and the clone — they
// are immutable after creation (§4.3), so aliasing them is safe and avoids
// needless TransformerWriter reconstruction on every refresh.
func (rt *RouteTable) Clone() *RouteTable {
	out := New()
	for source, topics := range rt.routes {
		cloned := make(map[string]WriterHandler, len(topics))
		for topic, handler := range topics {
			cloned[topic] = handler
		}
		out.routes[source] = cloned
	}
	return out
}

// Sources returns the set of source names currently present, for
// diagnostics/metrics.
func (rt *RouteTable) Sources() []string {
	out := make([]string, 0, len(rt.routes))
	for s := range rt.routes {
		out = append(out, s)
	}
	return out
}
