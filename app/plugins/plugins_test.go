package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	kinds := Available()
	require.Len(t, kinds, 3)
	want := map[string][]string{
		"metrics.sinks":   {"influx", "nop", "prometheus"},
		"notifiers":       {"mqtt", "none", "redis"},
		"logging.run_log": {"jsonl", "none", "postgres", "rotating", "sqlite"},
	}
	for _, k := range kinds {
		assert.Subset(t, k.Types, want[k.Section], k.Section)
	}
}
