// Package symbolicate resolves decoded stack traces against symcaches.
//
// A Symbolicator answers for one build. A Registry hands out one
// Symbolicator per build key, loading the symcache from a symcache.Store or
// building it from a debug information file named after the key. Handler
// exposes the registry over HTTP: POST an encoded trace, receive JSON.
package symbolicate
