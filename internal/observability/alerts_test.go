package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertFile struct {
	Groups []struct {
		Name  string      `yaml:"name"`
		Rules []alertRule `yaml:"rules"`
	} `yaml:"groups"`
}

// Keeps the shipped alert rules in lockstep with the metric names this
// package registers and the runbook anchors in docs/.
func TestHTTPAlertRules(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "http.yml"))
	require.NoError(t, err)

	var spec alertFile
	require.NoError(t, yaml.Unmarshal(data, &spec))

	rules := map[string]alertRule{}
	for _, group := range spec.Groups {
		if group.Name != "http" {
			continue
		}
		for _, rule := range group.Rules {
			rules[rule.Alert] = rule
		}
	}

	expected := map[string]struct {
		severity string
		runbook  string
	}{
		"HighErrorRate": {severity: "critical", runbook: "docs/runbook-ops.md#high-error-rate"},
		"HighLatency":   {severity: "warning", runbook: "docs/runbook-ops.md#high-latency"},
	}
	require.Len(t, rules, len(expected))

	for name, want := range expected {
		rule, ok := rules[name]
		require.True(t, ok, "rule %s missing", name)
		require.Equal(t, want.severity, rule.Labels["severity"], "rule %s", name)
		require.Equal(t, want.runbook, rule.Annotations["runbook"], "rule %s", name)
		require.NotEmpty(t, rule.Annotations["summary"], "rule %s", name)
		require.NotEmpty(t, rule.Annotations["description"], "rule %s", name)
		require.NotEmpty(t, rule.Expr, "rule %s", name)
		require.NotEmpty(t, rule.For, "rule %s", name)
		require.Contains(t, rule.Expr, "meridian_http_", "rule %s should alert on this service's metrics", name)
	}
}
