// Package capture walks the current call stack and stabilizes each frame.
//
// A Gate combines an Unwinder, which produces return addresses innermost
// first and can tell whether a frame has local debug information, with a
// stabilize.Stabilizer. Two entry points exist:
//
//	StableAddrs               always returns the collected addresses
//	StableAddrsIfNoDebugInfo  returns nothing when the binary can already
//	                          symbolicate itself
//
// The walk stops at the first frame that resolves local debug information;
// that frame is not included. A frame whose address cannot be stabilized is
// kept as an unresolved entry rather than dropped, so positions in the list
// match positions on the stack.
package capture
