package security

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestParseMetricsLabels_Empty(t *testing.T) {
	labels, err := ParseMetricsLabels("")
	require.NoError(t, err)
	require.Nil(t, labels)
}

func TestParseMetricsLabels_Pairs(t *testing.T) {
	labels, err := ParseMetricsLabels("service=admin-service,env=prod")
	require.NoError(t, err)
	require.Equal(t, prometheus.Labels{"service": "admin-service", "env": "prod"}, labels)
}

func TestParseMetricsLabels_ExpandsEnv(t *testing.T) {
	t.Setenv("DEPLOY_ENV", "staging")
	labels, err := ParseMetricsLabels("env=${DEPLOY_ENV}")
	require.NoError(t, err)
	require.Equal(t, "staging", labels["env"])
}

func TestParseMetricsLabels_RejectsMissingValue(t *testing.T) {
	_, err := ParseMetricsLabels("service")
	require.Error(t, err)
}

func TestParseMetricsLabels_RejectsBadKey(t *testing.T) {
	_, err := ParseMetricsLabels("1bad=value")
	require.Error(t, err)
}
