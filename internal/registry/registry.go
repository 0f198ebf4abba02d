// Package registry implements the MetaRegistry (§4.7): the Router's source
// of truth for routing descriptors. HTTPRegistry is the default
// implementation described by §6 ("invokes an external function named
// get-route-config"); StaticRegistry is an in-memory stand-in holding a
// fixed descriptor list, used by tests. config.BuildRegistry always builds
// an HTTPRegistry.
package registry

import (
	"firestige.xyz/ingestd/internal/model"
)

// MetaRegistry is the Router's dependency for fetching routing descriptors
// (§4.7).
type MetaRegistry interface {
	Initialize() bool
	Fetch() ([]model.RouteDescriptor, error)
}
