// Package discovery defines the declarative marker and registration record
// an external reflection/decorator-based discovery pass uses to tell the
// profiler which application methods to watch. The discovery pass itself
// (scanning struct tags, walking a method set) lives outside the core; this
// package only defines the contract it populates.
package discovery

import (
	"context"

	"github.com/karimalihussein/querysentinel/internal/capture"
)

// DiagnoseQuery is a declarative marker attached to an application method
// to opt it into profiling. Label and Description are both optional and
// default to empty.
type DiagnoseQuery struct {
	Label       string
	Description string
}

// MethodRegistration records one method an external discovery pass found
// annotated with DiagnoseQuery, along with enough identity to attribute
// captured queries back to it. Invoke is supplied by the discovery pass to
// let the profiler re-run the annotated method and capture its query; it is
// nil until the external discovery pass sets it.
type MethodRegistration struct {
	Class  string
	Method string
	Marker DiagnoseQuery
	Invoke func(context.Context) (capture.Capture, error)
}
