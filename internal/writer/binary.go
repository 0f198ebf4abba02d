package writer

// BinaryHooks is the plug-in contract for a writer whose natural payload is
// raw bytes. Text writes are adapted via UTF-8 conversion: a string becomes
// its byte representation and back.
type BinaryHooks interface {
	Init(name string, setFailed func()) bool
	WriteBinary(source, topic string, b []byte) bool
	WriteBinarySeq(source, topic string, seq [][]byte) bool
	Stop() bool
}

// binaryAdapter implements the full writer.Hooks by converting text calls to
// UTF-8 byte calls and delegating binary calls directly.
type binaryAdapter struct {
	inner BinaryHooks
}

// NewBinaryBase wraps a BinaryHooks plug-in into a Base implementing
// model.Writer, converting text writes through UTF-8 byte conversion.
func NewBinaryBase(hooks BinaryHooks) *Base {
	return NewBase(&binaryAdapter{inner: hooks})
}

func (a *binaryAdapter) Init(name string, setFailed func()) bool { return a.inner.Init(name, setFailed) }
func (a *binaryAdapter) Stop() bool            { return a.inner.Stop() }

func (a *binaryAdapter) WriteBinary(source, topic string, b []byte) bool {
	return a.inner.WriteBinary(source, topic, b)
}

func (a *binaryAdapter) WriteBinarySeq(source, topic string, seq [][]byte) bool {
	return a.inner.WriteBinarySeq(source, topic, seq)
}

func (a *binaryAdapter) WriteText(source, topic, text string) bool {
	return a.inner.WriteBinary(source, topic, []byte(text))
}

func (a *binaryAdapter) WriteTextSeq(source, topic string, seq []string) bool {
	out := make([][]byte, len(seq))
	for i, s := range seq {
		out[i] = []byte(s)
	}
	return a.inner.WriteBinarySeq(source, topic, out)
}
