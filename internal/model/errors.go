// Package model holds the wire-level types shared by every component of the
// ingest pipeline: payloads, route descriptors, and the sentinel error
// taxonomy.
package model

import "errors"

// Sentinel errors, following the teacher's ADR-021 small-sentinel pattern,
// one per category of the error taxonomy. No package in this module returns
// or wraps them; the pipeline reports these failures through boolean
// results, metrics and log lines.
var (
	// ErrConfiguration: missing/malformed config or type descriptor. Fatal —
	// the Engine stays in FailedInitialization.
	ErrConfiguration = errors.New("ingestd: configuration error")

	// ErrInitialization: a plug-in's initialize returned false or panicked.
	// That plug-in is omitted; if a required component is missing, the
	// Engine fails to start.
	ErrInitialization = errors.New("ingestd: initialization error")

	// ErrTransientTransport: a source/writer plug-in lost its external
	// connection. The plug-in calls setFailed(); the monitor restarts it.
	ErrTransientTransport = errors.New("ingestd: transient transport error")

	// ErrInvalidRecord: a record failed plug-in validation. Dropped, counted,
	// logged at warn; the write call returns false.
	ErrInvalidRecord = errors.New("ingestd: invalid record")

	// ErrRegistryFetch: MetaRegistry.fetch failed. The previous RouteTable is
	// retained.
	ErrRegistryFetch = errors.New("ingestd: registry fetch failed")

	// ErrUnrouteable: no RouteTable entry matches (source, topic). The
	// record is silently dropped at the router boundary.
	ErrUnrouteable = errors.New("ingestd: unrouteable record")
)
