// Package errors provides structured error types for the stabletrace module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries context: field path, byte offset, format name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Path("header", "version", "dev_build").
//		Offset(9).
//		Detail("flag byte %d is not 0 or 1", b).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseDecode, path, offset)
//	err := errors.UnsupportedVersion(errors.PhaseDecode, "trace", 3)
//
// Errors match with errors.Is on Phase and Kind, so a template value works as
// a sentinel:
//
//	var ErrFatArchive = &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindFatArchive}
package errors
