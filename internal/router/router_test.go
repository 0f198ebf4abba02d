package router

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/registry"
	"firestige.xyz/ingestd/internal/routetable"
	"firestige.xyz/ingestd/internal/runstate"
)

type recordingWriter struct {
	mu    sync.Mutex
	texts []string
}

func (w *recordingWriter) Initialize(string) bool        { return true }
func (w *recordingWriter) Start() bool                   { return true }
func (w *recordingWriter) Stop() bool                     { return true }
func (w *recordingWriter) GetState() runstate.State        { return runstate.Running }
func (w *recordingWriter) WriteText(_, _, text string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.texts = append(w.texts, text)
	return true
}
func (w *recordingWriter) WriteTextSeq(string, string, []string) bool     { return true }
func (w *recordingWriter) WriteBinary(string, string, []byte) bool        { return true }
func (w *recordingWriter) WriteBinarySeq(string, string, [][]byte) bool   { return true }

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.texts)
}

func writerFactory(w model.Writer) routetable.WriterFactory {
	return func(name string) (model.Writer, bool) {
		if name == "w1" {
			return w, true
		}
		return nil, false
	}
}

func noTransformers() routetable.TransformerFactory {
	return func(string, string) (model.Transformer, bool) { return nil, false }
}

func TestRouterRoutesMatchedRecordsEndToEnd(t *testing.T) {
	w := &recordingWriter{}
	reg := registry.NewStaticRegistry([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
	})

	r := New()
	require.True(t, r.Initialize(Config{
		TargetThreads: 2,
		Registry:      reg,
		Writers:       writerFactory(w),
		Transformers:  noTransformers(),
	}))
	require.True(t, r.Start())

	require.True(t, r.WriteText("s1", "t/a", "hello"))

	deadline := time.Now().Add(2 * time.Second)
	for w.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, w.count())
	assert.Equal(t, "hello", w.texts[0])

	require.True(t, r.Stop())
}

func TestRouterDropsUnrouteableRecordSilently(t *testing.T) {
	w := &recordingWriter{}
	reg := registry.NewStaticRegistry(nil)

	r := New()
	require.True(t, r.Initialize(Config{
		TargetThreads: 1,
		Registry:      reg,
		Writers:       writerFactory(w),
		Transformers:  noTransformers(),
	}))
	require.True(t, r.Start())

	require.True(t, r.WriteText("unknown-source", "t/a", "hello"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, w.count())

	require.True(t, r.Stop())
}

func TestRouterRetainsPreviousTableOnFetchFailure(t *testing.T) {
	w := &recordingWriter{}
	reg := registry.NewStaticRegistry([]model.RouteDescriptor{
		{SourceProvider: "s1", SourceTopic: "t/a", DestProvider: "w1", DestTopic: "u/a"},
	})

	r := New()
	require.True(t, r.Initialize(Config{
		TargetThreads: 1,
		Registry:      reg,
		Writers:       writerFactory(w),
		Transformers:  noTransformers(),
	}))

	reg.FailNext()
	r.refresh() // directly exercise the retain-on-failure path

	require.True(t, r.Start())
	require.True(t, r.WriteText("s1", "t/a", "still routed"))

	deadline := time.Now().Add(2 * time.Second)
	for w.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, w.count())

	require.True(t, r.Stop())
}

func TestRouterDefaultsTargetThreadsWhenUnset(t *testing.T) {
	reg := registry.NewStaticRegistry(nil)
	r := New()
	require.True(t, r.Initialize(Config{Registry: reg, Writers: writerFactory(nil), Transformers: noTransformers()}))
	assert.Len(t, r.shard, defaultTargetThreads)
}
