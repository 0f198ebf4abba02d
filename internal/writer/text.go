package writer

import "firestige.xyz/ingestd/internal/model"

// TextHooks is the plug-in contract for a writer whose natural payload is
// text. Binary writes are adapted by base64-encoding the bytes and
// forwarding through WriteText/WriteTextSeq, since a text destination only
// understands strings.
type TextHooks interface {
	Init(name string, setFailed func()) bool
	WriteText(source, topic, text string) bool
	WriteTextSeq(source, topic string, seq []string) bool
	Stop() bool
}

// textAdapter implements the full writer.Hooks by converting binary calls to
// base64-encoded text calls and delegating text calls directly.
type textAdapter struct {
	inner TextHooks
}

// NewTextBase wraps a TextHooks plug-in into a Base implementing
// model.Writer, converting binary writes through base64.
func NewTextBase(hooks TextHooks) *Base {
	return NewBase(&textAdapter{inner: hooks})
}

func (a *textAdapter) Init(name string, setFailed func()) bool { return a.inner.Init(name, setFailed) }
func (a *textAdapter) Stop() bool            { return a.inner.Stop() }

func (a *textAdapter) WriteText(source, topic, text string) bool {
	return a.inner.WriteText(source, topic, text)
}

func (a *textAdapter) WriteTextSeq(source, topic string, seq []string) bool {
	return a.inner.WriteTextSeq(source, topic, seq)
}

func (a *textAdapter) WriteBinary(source, topic string, b []byte) bool {
	return a.inner.WriteText(source, topic, model.EncodeBinary(b))
}

func (a *textAdapter) WriteBinarySeq(source, topic string, seq [][]byte) bool {
	encoded := model.LazyEncodeBinarySeq(seq).Materialize()
	return a.inner.WriteTextSeq(source, topic, encoded)
}
