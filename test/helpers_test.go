package test

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/techdispatch/config"
	"github.com/kilianp07/techdispatch/core/factory"
)

const scheduleBody = `{"technicians":[{"id":1,"skills":["hvac"]},{"id":2,"skills":["plumbing"]}],
"jobs":[{"id":1,"required_skills":["hvac"],"priority":"emergency","submitted_hour":0,"days_waited":0,"estimated_hours":2},
        {"id":2,"required_skills":["plumbing"],"priority":"urgent","submitted_hour":0,"days_waited":1,"estimated_hours":1},
        {"id":3,"required_skills":["hvac"],"priority":"routine","submitted_hour":0,"days_waited":4,"estimated_hours":3}]}`

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
}

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Logging.Level = "error"
	cfg.Logging.RunLog = factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "runs.jsonl")}}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}
