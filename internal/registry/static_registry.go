package registry

import "firestige.xyz/ingestd/internal/model"

// StaticRegistry is an in-memory MetaRegistry: useful in tests and for
// deployments that supply routes via local configuration instead of a
// remote get-route-config call.
type StaticRegistry struct {
	descriptors []model.RouteDescriptor
	failNext    bool
}

// NewStaticRegistry returns a StaticRegistry serving a fixed descriptor set.
func NewStaticRegistry(descriptors []model.RouteDescriptor) *StaticRegistry {
	return &StaticRegistry{descriptors: descriptors}
}

// Initialize always succeeds.
func (s *StaticRegistry) Initialize() bool { return true }

// Fetch returns the configured descriptor set, or an error once if FailNext
// was armed (for exercising the Router's "retain previous table" path).
func (s *StaticRegistry) Fetch() ([]model.RouteDescriptor, error) {
	if s.failNext {
		s.failNext = false
		return nil, errFetchFailed
	}
	return s.descriptors, nil
}

// SetDescriptors replaces the served descriptor set, for tests simulating a
// config change between refreshes.
func (s *StaticRegistry) SetDescriptors(descriptors []model.RouteDescriptor) {
	s.descriptors = descriptors
}

// FailNext arms a single Fetch failure.
func (s *StaticRegistry) FailNext() {
	s.failNext = true
}

var errFetchFailed = fetchFailedError{}

type fetchFailedError struct{}

func (fetchFailedError) Error() string { return "registry: simulated fetch failure" }
