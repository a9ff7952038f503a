package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so tests can assert on what a
// component reported.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that failed in a way that should be
	// addressed. `id` names the component and method, e.g.
	// `dispatcher.create`, never a finer detail of the failure.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something worth investigating that is not
	// necessarily broken, like a backend answering with an error status.
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is dropped in production.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of an event.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
