// Package metrics provides observability hooks for redirect builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay zero-cost unless the watch server wires in
// the Prometheus implementation.
package metrics

import "time"

// Recorder defines observability hooks for build and serve metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|failed
	SetPagesScanned(n int)
	SetRedirectsResolved(n int)
	IncRebuild(trigger string) // trigger: fsnotify|schedule|initial
	IncRedirectServed()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) SetPagesScanned(int)                {}
func (NoopRecorder) SetRedirectsResolved(int)           {}
func (NoopRecorder) IncRebuild(string)                  {}
func (NoopRecorder) IncRedirectServed()                 {}
