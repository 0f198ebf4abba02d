package model

import "firestige.xyz/ingestd/internal/runstate"

// Writer is the in-process ABI every destination writer plug-in satisfies
// (§6 "Plug-in interfaces"). internal/writer.Base implements it; the Router
// and Engine only ever hold this interface, never a concrete writer type.
type Writer interface {
	Initialize(name string) bool
	Start() bool
	Stop() bool
	GetState() runstate.State

	WriteText(source, topic, text string) bool
	WriteTextSeq(source, topic string, seq []string) bool
	WriteBinary(source, topic string, b []byte) bool
	WriteBinarySeq(source, topic string, seq [][]byte) bool
}

// Source is the in-process ABI every ingest source plug-in satisfies.
// internal/source.Base implements it.
type Source interface {
	Initialize(name string) bool
	Start() bool
	Stop() bool
	GetState() runstate.State
}

// Transformer is the in-process ABI of a named record transformer (§6).
// Text transformers fix F=T=string, per spec; binary records pass through a
// Transformer only after being base64-encoded to text at the boundary
// (§4.4), so a single interface covers both payload families.
//
// TransformOne returns TransformedNull() to forward a null and
// TransformedValue(v) to forward v — see TransformResult.
type Transformer interface {
	Initialize(info string) bool
	TransformOne(source, topic, record string) TransformResult
	// TransformMany returning a nil slice means "forward nothing" (§9,
	// Open Question 3, decided).
	TransformMany(source, topic string, records []string) []string
}

// TransformResult is the explicit nullable-string result of TransformOne:
// Go has no built-in "nullable string", and a bare *string return makes call
// sites error-prone (nil vs pointer-to-empty-string). Null==true mirrors
// "a transformer returning null for a single record forwards null
// downstream" (§4.4 edge cases).
type TransformResult struct {
	Value string
	Null  bool
}

// TransformedValue wraps a non-null transform result.
func TransformedValue(v string) TransformResult { return TransformResult{Value: v} }

// TransformedNull represents a transformer's null result.
func TransformedNull() TransformResult { return TransformResult{Null: true} }
