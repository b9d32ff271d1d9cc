package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards one-time collector registration

// RegisterRuntimeCollectors adds the Go runtime and process collectors to
// the service registry. Calls after the first are no-ops.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "playlab"}),
		)
	})
}
