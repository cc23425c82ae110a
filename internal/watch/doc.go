// Package watch re-runs a markdown import whenever the watched file or
// directory changes on disk, debouncing bursts of filesystem events (an
// editor save often fires several in a row) into a single re-import per
// settled path.
package watch
