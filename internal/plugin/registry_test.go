package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/runstate"
)

type stubSource struct{}

func (stubSource) Initialize(string) bool        { return true }
func (stubSource) Start() bool                   { return true }
func (stubSource) Stop() bool                     { return true }
func (stubSource) GetState() runstate.State        { return runstate.Created }

func TestRegisterAndBuildSource(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("stub", func() model.Source { return stubSource{} })

	s, ok := r.NewSource("stub")
	require.True(t, ok)
	assert.NotNil(t, s)

	_, ok = r.NewSource("missing")
	assert.False(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("stub", func() model.Source { return stubSource{} })
	assert.Panics(t, func() {
		r.RegisterSource("stub", func() model.Source { return stubSource{} })
	})
}

func TestRegisterEmptyNamePanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.RegisterWriter("", nil)
	})
}

func TestListSourcesSorted(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource("zeta", func() model.Source { return stubSource{} })
	r.RegisterSource("alpha", func() model.Source { return stubSource{} })
	assert.Equal(t, []string{"alpha", "zeta"}, r.ListSources())
}
