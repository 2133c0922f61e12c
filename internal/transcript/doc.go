// Package transcript defines the timed segment model produced by speech
// recognition and consumed by the subtitle formatter.
//
// Segments are ordered and read-only from the formatter's point of view.
// Ordering and non-overlap are upstream guarantees; nothing here corrects
// them.
package transcript
