// Package transform implements the TransformerWriter adapter (§4.4): the
// only object a Router worker invokes to dispatch a matched record. It
// binds an optional Transformer to a destination Writer, applies
// base64/UTF-8 boundary conversions, and honors maxBatchSize for sequence
// inputs — grounded on the teacher's internal/task/reporter_wrapper.go
// batch/flush/fallback adapter.
package transform

import (
	"time"

	"firestige.xyz/ingestd/internal/metrics"
	"firestige.xyz/ingestd/internal/model"
	"firestige.xyz/ingestd/internal/runstate"
)

// TransformerWriter is the composite (transformer|nil, destinationWriter,
// destProvider, destTopic, maxBatchSize) of §3/§4.4. A nil Transformer
// means pass-through.
type TransformerWriter struct {
	transformer     model.Transformer
	transformerName string
	writer          model.Writer
	destProvider    string
	destTopic       string
	maxBatchSize    int
}

// New constructs a TransformerWriter. maxBatchSize is normalized by the
// caller (model.RouteDescriptor.NormalizedBatchSize); New trusts it as-is.
// transformerName labels TransformLatencySeconds; it is "" (reported as
// "none") for a pass-through TransformerWriter.
func New(transformer model.Transformer, transformerName string, writer model.Writer, destProvider, destTopic string, maxBatchSize int) *TransformerWriter {
	return &TransformerWriter{
		transformer:     transformer,
		transformerName: transformerName,
		writer:          writer,
		destProvider:    destProvider,
		destTopic:       destTopic,
		maxBatchSize:    maxBatchSize,
	}
}

// observe records one transform-and-forward stage's latency under
// TransformLatencySeconds, labeled by destination writer and transformer
// name ("none" for pass-through).
func (tw *TransformerWriter) observe(start time.Time) {
	name := tw.transformerName
	if name == "" {
		name = "none"
	}
	metrics.TransformLatencySeconds.WithLabelValues(tw.destProvider, name).Observe(time.Since(start).Seconds())
}

// GetState returns the state of the underlying destination writer — a
// TransformerWriter has no thread of its own and no Start or Stop methods;
// its state is the destination writer's state (§4.4).
func (tw *TransformerWriter) GetState() runstate.State {
	return tw.writer.GetState()
}

// Write forwards a single text record, applying the transformer if any.
func (tw *TransformerWriter) Write(source, topic, text string) bool {
	defer tw.observe(time.Now())
	if tw.transformer == nil {
		return tw.writer.WriteText(tw.destProvider, tw.destTopic, text)
	}
	result := tw.transformer.TransformOne(source, topic, text)
	if result.Null {
		// "a transformer returning null for a single record forwards null
		// downstream" (§4.4) — WriteText has no null-text representation,
		// so the forwarded null is dropped here exactly as it would be at
		// the WorkPool boundary (a null record write returns false).
		return false
	}
	return tw.writer.WriteText(tw.destProvider, tw.destTopic, result.Value)
}

// WriteSeq forwards an ordered sequence of text records, batching per
// maxBatchSize.
func (tw *TransformerWriter) WriteSeq(source, topic string, seq []string) bool {
	defer tw.observe(time.Now())
	if seq == nil {
		return true // null input sequence → no-op success (§4.4 edge cases)
	}
	if len(seq) == 0 {
		return true
	}

	if tw.maxBatchSize == 0 {
		return tw.writeSeqBatch(source, topic, seq)
	}

	ok := true
	for start := 0; start < len(seq); start += tw.maxBatchSize {
		end := start + tw.maxBatchSize
		if end > len(seq) {
			end = len(seq)
		}
		// Materialize the slice into its own concrete backing array: it is
		// about to be handed to an asynchronous consumer (the writer's
		// WorkPool), so it must not alias seq's backing array beyond this
		// call (§4.4, §9 "materialized before enqueue").
		batch := make([]string, end-start)
		copy(batch, seq[start:end])
		ok = tw.writeSeqBatch(source, topic, batch) && ok
	}
	return ok
}

func (tw *TransformerWriter) writeSeqBatch(source, topic string, batch []string) bool {
	if tw.transformer == nil {
		return tw.writer.WriteTextSeq(tw.destProvider, tw.destTopic, batch)
	}
	result := tw.transformer.TransformMany(source, topic, batch)
	if result == nil {
		// Open Question 3, decided (§9): transformMany returning nil means
		// "forward nothing" — distinct from forwarding an empty batch.
		return true
	}
	return tw.writer.WriteTextSeq(tw.destProvider, tw.destTopic, result)
}

// WriteBinary base64-encodes bytes, runs the result through the text
// transformer (if any), base64-decodes the transformed text, and forwards
// as binary. A pass-through TransformerWriter skips the codec round-trip
// entirely so the destination observes bit-identical bytes (§8 invariant 4).
func (tw *TransformerWriter) WriteBinary(source, topic string, b []byte) bool {
	defer tw.observe(time.Now())
	if b == nil {
		return false
	}
	if tw.transformer == nil {
		return tw.writer.WriteBinary(tw.destProvider, tw.destTopic, b)
	}

	encoded := model.EncodeBinary(b)
	result := tw.transformer.TransformOne(source, topic, encoded)
	if result.Null {
		return false
	}
	decoded, err := model.DecodeText(result.Value)
	if err != nil {
		return false
	}
	return tw.writer.WriteBinary(tw.destProvider, tw.destTopic, decoded)
}

// WriteBinarySeq wraps bytesSeq in a lazy base64-encoding adapter, batches
// per maxBatchSize (materializing each slice before it crosses to the
// writer's consumer goroutine), and wraps the transformer output in a lazy
// base64-decoding adapter before forwarding (§4.4).
func (tw *TransformerWriter) WriteBinarySeq(source, topic string, seq [][]byte) bool {
	defer tw.observe(time.Now())
	if seq == nil {
		return true
	}
	if len(seq) == 0 {
		return true
	}

	encoded := model.LazyEncodeBinarySeq(seq).Materialize()

	if tw.maxBatchSize == 0 {
		return tw.writeBinarySeqBatch(source, topic, encoded)
	}

	ok := true
	for start := 0; start < len(encoded); start += tw.maxBatchSize {
		end := start + tw.maxBatchSize
		if end > len(encoded) {
			end = len(encoded)
		}
		batch := make([]string, end-start)
		copy(batch, encoded[start:end])
		ok = tw.writeBinarySeqBatch(source, topic, batch) && ok
	}
	return ok
}

func (tw *TransformerWriter) writeBinarySeqBatch(source, topic string, encodedBatch []string) bool {
	if tw.transformer == nil {
		decoded, err := model.DecodeTextSeq(encodedBatch)
		if err != nil {
			return false
		}
		return tw.writer.WriteBinarySeq(tw.destProvider, tw.destTopic, decoded)
	}

	result := tw.transformer.TransformMany(source, topic, encodedBatch)
	if result == nil {
		return true
	}
	decoded := model.LazyDecodeTextSeq(result).Materialize()
	if len(decoded) != len(result) {
		// a decode error truncated the lazy sequence: treat as invalid
		// record, drop (§7 InvalidRecord).
		return false
	}
	return tw.writer.WriteBinarySeq(tw.destProvider, tw.destTopic, decoded)
}
