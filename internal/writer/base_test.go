package writer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/ingestd/internal/runstate"
)

type recordingHooks struct {
	mu         sync.Mutex
	texts      []string
	textSeqs   [][]string
	binaries   [][]byte
	binarySeqs [][][]byte
	stopped    bool
}

func (h *recordingHooks) Init(string, func()) bool { return true }
func (h *recordingHooks) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	return true
}
func (h *recordingHooks) WriteText(_, _, text string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.texts = append(h.texts, text)
	return true
}
func (h *recordingHooks) WriteTextSeq(_, _ string, seq []string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.textSeqs = append(h.textSeqs, seq)
	return true
}
func (h *recordingHooks) WriteBinary(_, _ string, b []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.binaries = append(h.binaries, b)
	return true
}
func (h *recordingHooks) WriteBinarySeq(_, _ string, seq [][]byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.binarySeqs = append(h.binarySeqs, seq)
	return true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWriterLifecycleAndDispatch(t *testing.T) {
	h := &recordingHooks{}
	b := NewBase(h)

	require.True(t, b.Initialize("w1"))
	require.True(t, b.Initialize("w1"), "idempotent after success")
	require.True(t, b.Start())
	assert.Equal(t, runstate.Running, b.GetState())

	require.True(t, b.WriteText("s1", "t/a", "hello"))
	require.True(t, b.WriteTextSeq("s1", "t/a", []string{"a", "b"}))
	require.True(t, b.WriteBinary("s1", "t/a", []byte{1, 2, 3}))
	require.True(t, b.WriteBinarySeq("s1", "t/a", [][]byte{{1}, {2}}))

	waitFor(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.texts) == 1 && len(h.textSeqs) == 1 && len(h.binaries) == 1 && len(h.binarySeqs) == 1
	})

	require.True(t, b.Stop())
	assert.Equal(t, runstate.Stopped, b.GetState())
	assert.True(t, h.stopped)
}

func TestWriterRejectsNilPayloads(t *testing.T) {
	h := &recordingHooks{}
	b := NewBase(h)
	assert.False(t, b.WriteTextSeq("s", "t", nil))
	assert.False(t, b.WriteBinary("s", "t", nil))
	assert.False(t, b.WriteBinarySeq("s", "t", nil))
}

func TestWriterIllegalStopBeforeStartIsNoOp(t *testing.T) {
	h := &recordingHooks{}
	b := NewBase(h)
	require.True(t, b.Initialize("w1"))
	assert.False(t, b.Stop())
}

func TestTextBaseAdaptsBinaryThroughBase64(t *testing.T) {
	h := &recordingHooks{}
	b := NewTextBase(&textHooksAdapter{h})
	require.True(t, b.Initialize("w1"))
	require.True(t, b.Start())

	require.True(t, b.WriteBinary("s", "t", []byte("hello")))
	waitFor(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.texts) == 1
	})
	assert.NotEqual(t, "hello", h.texts[0], "should be base64-encoded, not raw")

	require.True(t, b.Stop())
}

func TestBinaryBaseAdaptsTextThroughUTF8(t *testing.T) {
	h := &recordingHooks{}
	b := NewBinaryBase(&binaryHooksAdapter{h})
	require.True(t, b.Initialize("w1"))
	require.True(t, b.Start())

	require.True(t, b.WriteText("s", "t", "hello"))
	waitFor(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.binaries) == 1
	})
	assert.Equal(t, []byte("hello"), h.binaries[0])

	require.True(t, b.Stop())
}

// textHooksAdapter/binaryHooksAdapter let the single recordingHooks double
// satisfy both the TextHooks and BinaryHooks narrower interfaces for the
// adapter tests above.
type textHooksAdapter struct{ *recordingHooks }

func (a *textHooksAdapter) Init(name string, setFailed func()) bool {
	return a.recordingHooks.Init(name, setFailed)
}
func (a *textHooksAdapter) Stop() bool                       { return a.recordingHooks.Stop() }
func (a *textHooksAdapter) WriteText(s, t, text string) bool { return a.recordingHooks.WriteText(s, t, text) }
func (a *textHooksAdapter) WriteTextSeq(s, t string, seq []string) bool {
	return a.recordingHooks.WriteTextSeq(s, t, seq)
}

type binaryHooksAdapter struct{ *recordingHooks }

func (a *binaryHooksAdapter) Init(name string, setFailed func()) bool {
	return a.recordingHooks.Init(name, setFailed)
}
func (a *binaryHooksAdapter) Stop() bool            { return a.recordingHooks.Stop() }
func (a *binaryHooksAdapter) WriteBinary(s, t string, b []byte) bool {
	return a.recordingHooks.WriteBinary(s, t, b)
}
func (a *binaryHooksAdapter) WriteBinarySeq(s, t string, seq [][]byte) bool {
	return a.recordingHooks.WriteBinarySeq(s, t, seq)
}
