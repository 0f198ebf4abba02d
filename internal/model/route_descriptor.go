package model

import "strings"

// RouteDescriptor (MetaEntry in the registry's wire format) describes one
// routing rule returned by a MetaRegistry.
type RouteDescriptor struct {
	SourceProvider string
	SourceTopic    string
	DestProvider   string
	DestTopic      string
	MaxBatchSize   int
	// TransformMeta is "name:info", "", or absent (zero value covers both).
	TransformMeta string
}

// HasTransform reports whether this descriptor names a transformer.
func (d RouteDescriptor) HasTransform() bool {
	return d.TransformMeta != ""
}

// TransformName is the lowercased substring of TransformMeta before the
// first ':'. Empty when HasTransform is false.
func (d RouteDescriptor) TransformName() string {
	if !d.HasTransform() {
		return ""
	}
	if idx := strings.IndexByte(d.TransformMeta, ':'); idx >= 0 {
		return strings.ToLower(d.TransformMeta[:idx])
	}
	return strings.ToLower(d.TransformMeta)
}

// TransformInfo is the substring of TransformMeta after the first ':', or
// "" if there is no ':' or no transform at all.
func (d RouteDescriptor) TransformInfo() string {
	if !d.HasTransform() {
		return ""
	}
	if idx := strings.IndexByte(d.TransformMeta, ':'); idx >= 0 {
		return d.TransformMeta[idx+1:]
	}
	return ""
}

// NormalizedBatchSize clamps MaxBatchSize to "no batching" (0) for any
// non-positive value, per §4.4 ("maxBatchSize ≤ 0 is normalized to 0").
func (d RouteDescriptor) NormalizedBatchSize() int {
	if d.MaxBatchSize <= 0 {
		return 0
	}
	return d.MaxBatchSize
}
