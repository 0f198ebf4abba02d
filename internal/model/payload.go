package model

// Kind identifies which of the four payload shapes a Payload carries.
type Kind int

const (
	// Text is a single UTF-8 string record.
	Text Kind = iota
	// Binary is a single byte-slice record.
	Binary
	// TextSeq is an ordered sequence of UTF-8 string records.
	TextSeq
	// BinarySeq is an ordered sequence of byte-slice records.
	BinarySeq
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case TextSeq:
		return "text-seq"
	case BinarySeq:
		return "binary-seq"
	default:
		return "unknown"
	}
}

// Payload is the tagged union of the four record shapes the pipeline moves.
// Exactly one of the fields matching Kind is meaningful; the others are
// left at their zero value.
type Payload struct {
	Kind      Kind
	Text      string
	Binary    []byte
	TextSeq   []string
	BinarySeq [][]byte
}

// NewText builds a Text payload.
func NewText(s string) Payload { return Payload{Kind: Text, Text: s} }

// NewBinary builds a Binary payload.
func NewBinary(b []byte) Payload { return Payload{Kind: Binary, Binary: b} }

// NewTextSeq builds a TextSeq payload.
func NewTextSeq(s []string) Payload { return Payload{Kind: TextSeq, TextSeq: s} }

// NewBinarySeq builds a BinarySeq payload.
func NewBinarySeq(b [][]byte) Payload { return Payload{Kind: BinarySeq, BinarySeq: b} }

// IsNil reports whether the payload carries no record at all: the zero
// Payload, or a Text/Binary/TextSeq/BinarySeq field that is nil/empty in a
// way equivalent to "no record was offered" (mirrors the source's "null
// record" write-rejection case).
func (p Payload) IsNil() bool {
	switch p.Kind {
	case Text:
		return false // empty string "" is a valid text record, not nil
	case Binary:
		return p.Binary == nil
	case TextSeq:
		return p.TextSeq == nil
	case BinarySeq:
		return p.BinarySeq == nil
	default:
		return true
	}
}

// MessageTuple is the immutable (source, topic, payload) triple a source
// hands to the Router.
type MessageTuple struct {
	Source  string
	Topic   string
	Payload Payload
}
