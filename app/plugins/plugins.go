// Package plugins links the built-in module implementations into the binary.
// Each imported package registers its factories in init; the rest of the
// application only refers to modules by their configured type name.
package plugins

import (
	"github.com/kilianp07/techdispatch/core/dispatch/logging"
	"github.com/kilianp07/techdispatch/core/metrics"
	"github.com/kilianp07/techdispatch/core/notify"

	_ "github.com/kilianp07/techdispatch/infra/metrics"
	_ "github.com/kilianp07/techdispatch/infra/mqtt"
	_ "github.com/kilianp07/techdispatch/infra/redis"
)

// Kind groups modules by the config section that selects them.
type Kind struct {
	Section string
	Types   []string
}

// Available lists every registered module type per config section.
func Available() []Kind {
	return []Kind{
		{Section: "metrics.sinks", Types: metrics.SinkTypes()},
		{Section: "notifiers", Types: notify.Types()},
		{Section: "logging.run_log", Types: logging.Backends()},
	}
}
