package rdf

import "context"

const (
	DefaultMaxLineBytes = 1 << 20
)

// DecodeOptions configures parser behavior and limits.
// Zero values use defaults. Use negative values to disable specific limits.
type DecodeOptions struct {
	MaxLineBytes int
	// MaxTriples stops decoding after this many statements (0 means no limit).
	MaxTriples int64
	// StrictIRIValidation rejects IRIs that fail ValidateIRI.
	StrictIRIValidation bool
	// Interner, when set, interns every IRI the decoder produces.
	Interner *Interner
	// Context provides cancellation for decoding work.
	Context context.Context
}

// DefaultDecodeOptions returns safe defaults for parser limits.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxLineBytes: DefaultMaxLineBytes,
	}
}

func normalizeDecodeOptions(opts DecodeOptions) DecodeOptions {
	if opts.MaxLineBytes == 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return opts
}
