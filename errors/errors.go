package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // trace to wire bytes
	PhaseDecode  Phase = "decode"  // wire bytes to trace
	PhaseCapture Phase = "capture" // stack walking
	PhaseBuild   Phase = "build"   // debug info to symcache
	PhaseParse   Phase = "parse"   // symcache bytes to handle
	PhaseLookup  Phase = "lookup"  // symcache queries
	PhaseStore   Phase = "store"   // symcache persistence
	PhaseServe   Phase = "serve"   // symbolication endpoint
)

// Kind categorizes the error
type Kind string

const (
	KindTruncated          Kind = "truncated"
	KindInvalidData        Kind = "invalid_data"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindUnsupported        Kind = "unsupported"
	KindOverflow           Kind = "overflow"
	KindFatArchive         Kind = "fat_archive"
	KindMissingDebugInfo   Kind = "missing_debug_info"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindIO                 Kind = "io"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Format string // object or wire format involved, if any
	Detail string
	Path   []string
	Offset int // byte offset into the input, -1 if not applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}

	if e.Format != "" {
		b.WriteString(": ")
		b.WriteString(e.Format)
	}

	if e.Detail != "" {
		if e.Format != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of the given
// kind, regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Format sets the object or wire format name
func (b *Builder) Format(f string) *Builder {
	b.err.Format = f
	return b
}

// Offset sets the byte offset into the input
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates an error for input that ended before a field was complete
func Truncated(phase Phase, path []string, offset int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Path:   path,
		Offset: offset,
		Detail: "unexpected end of input",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, offset int, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Offset: offset,
		Detail: "value overflows " + targetType,
	}
}

// UnsupportedVersion creates an error for an unknown format version
func UnsupportedVersion(phase Phase, format string, version uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedVersion,
		Format: format,
		Offset: -1,
		Detail: fmt.Sprintf("unknown version %d", version),
		Value:  version,
	}
}

// InvalidDiscriminant creates an invalid tag error for enums and options
func InvalidDiscriminant(phase Phase, path []string, disc byte, maxValid byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("discriminant %d out of range (max %d)", disc, maxValid),
		Value:  disc,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: -1,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: -1,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: -1,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}
