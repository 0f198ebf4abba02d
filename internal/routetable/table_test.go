package routetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/runstate"
)

type stubWriter struct{ name string }

func (s *stubWriter) Initialize(string) bool { return true }
func (s *stubWriter) Start() bool            { return true }
func (s *stubWriter) Stop() bool             { return true }
func (s *stubWriter) GetState() runstate.State { return runstate.Running }
func (s *stubWriter) WriteText(string, string, string) bool          { return true }
func (s *stubWriter) WriteTextSeq(string, string, []string) bool     { return true }
func (s *stubWriter) WriteBinary(string, string, []byte) bool        { return true }
func (s *stubWriter) WriteBinarySeq(string, string, [][]byte) bool   { return true }

type stubTransformer struct{}

func (stubTransformer) Initialize(string) bool { return true }
func (stubTransformer) TransformOne(_, _, record string) model.TransformResult {
	return model.TransformedValue(record)
}
func (stubTransformer) TransformMany(_, _ string, records []string) []string { return records }

func writerFactory(writers map[string]model.Writer) WriterFactory {
	return func(name string) (model.Writer, bool) {
		w, ok := writers[name]
		return w, ok
	}
}

func transformerFactory() TransformerFactory {
	return func(name, info string) (model.Transformer, bool) {
		if name == "unknown" {
			return nil, false
		}
		return stubTransformer{}, true
	}
}

func TestLookupIffTopicMatch(t *testing.T) {
	writers := map[string]model.Writer{"w1": &stubWriter{name: "w1"}}
	rt := New()
	rt.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
		{SourceProvider: "s1", SourceTopic: "t/*", DestProvider: "w1", DestTopic: "u/wild"},
	}, writerFactory(writers), transformerFactory())

	require.NotNil(t, rt.Lookup("s1", "t/a"))
	require.NotNil(t, rt.Lookup("s1", "t/anything"))
	assert.Nil(t, rt.Lookup("s1", "other"))
	assert.Nil(t, rt.Lookup("missing-source", "t/a"))
}

func TestUpdateRoutesSkipsUnresolvedWriter(t *testing.T) {
	rt := New()
	rt.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "missing-writer", DestTopic: "u/a"},
	}, writerFactory(map[string]model.Writer{}), transformerFactory())

	assert.Nil(t, rt.Lookup("s1", "t/a"))
	assert.Empty(t, rt.Sources())
}

func TestUpdateRoutesSkipsUnresolvedTransformer(t *testing.T) {
	writers := map[string]model.Writer{"w1": &stubWriter{name: "w1"}}
	rt := New()
	rt.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a", TransformMeta: "unknown:info"},
	}, writerFactory(writers), transformerFactory())

	assert.Nil(t, rt.Lookup("s1", "t/a"))
}

func TestUpdateRoutesIsIdempotentOnRepeatedApply(t *testing.T) {
	writers := map[string]model.Writer{"w1": &stubWriter{name: "w1"}}
	descriptors := []model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
	}
	rt := New()
	rt.UpdateRoutes(descriptors, writerFactory(writers), transformerFactory())
	first := rt.Lookup("s1", "t/a")
	rt.UpdateRoutes(descriptors, writerFactory(writers), transformerFactory())
	second := rt.Lookup("s1", "t/a")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, []string{"s1"}, rt.Sources())
}

func TestUpdateRoutesPrunesStaleEntries(t *testing.T) {
	writers := map[string]model.Writer{"w1": &stubWriter{name: "w1"}}
	rt := New()
	rt.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
		{SourceProvider: "s2", SourceTopic: "t/b", DestProvider: "w1", DestTopic: "u/b"},
	}, writerFactory(writers), transformerFactory())

	rt.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
	}, writerFactory(writers), transformerFactory())

	assert.NotNil(t, rt.Lookup("s1", "t/a"))
	assert.Nil(t, rt.Lookup("s2", "t/b"))
	assert.Equal(t, []string{"s1"}, rt.Sources())
}

func TestCloneIsStructuralDeepCopy(t *testing.T) {
	writers := map[string]model.Writer{"w1": &stubWriter{name: "w1"}}
	rt := New()
	rt.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
	}, writerFactory(writers), transformerFactory())

	clone := rt.Clone()
	clone.UpdateRoutes([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/b", DestProvider: "w1", DestTopic: "u/b"},
	}, writerFactory(writers), transformerFactory())

	assert.NotNil(t, rt.Lookup("s1", "t/a"))
	assert.Nil(t, rt.Lookup("s1", "t/b"), "mutating the clone must not affect the original")
	assert.NotNil(t, clone.Lookup("s1", "t/a"))
	assert.NotNil(t, clone.Lookup("s1", "t/b"))
}
