// Package scheduler implements session composition: it classifies active
// problems into priority categories, assigns urgency scores, and selects
// which problem to present next within a time-bounded practice session.
//
// All functions operate on a snapshot of the active problem set and a
// single time value taken once per call, so classification and due
// checks never skew against each other. The package performs no I/O and
// holds no per-session state in continuous mode; callers re-invoke
// selection after every rating submission.
package scheduler
