package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/deal-notifier/tools/dashgen/dashboards"
	"github.com/donaldgifford/deal-notifier/tools/dashgen/rules"
	"github.com/donaldgifford/deal-notifier/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	dash, err := dashboards.BuildOverview().Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, dashboards.OverviewUID, *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Deal Notifier Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	assert.Len(t, dash.Panels, 6)

	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 19, totalPanels)

	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "deal-notifier-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "deal-notifier-recording", group.Name)

	expectedRecords := []string{
		rules.RecordHTTPRequests,
		rules.RecordHTTPErrors,
		rules.RecordRuns,
		rules.RecordPipedriveAPICalls,
	}
	require.Len(t, group.Rules, len(expectedRecords))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.True(t, KnownMetrics[rule.Record], "%s missing from KnownMetrics", rule.Record)
	}

	result := validate.Rules(ruleSpecs(cr), KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)

	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "deal-notifier-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "deal-notifier-alerts", group.Name)

	expectedAlerts := []string{
		"DealNotifierDown",
		"DealNotifierNotReady",
		"DealNotifierNoSuccessfulRun",
		"DealNotifierFetchErrors",
		"DealNotifierPipedriveQuotaHigh",
		"DealNotifierPipedriveLimitReached",
		"DealNotifierNotificationFailures",
		"DealNotifierStateSaveErrors",
	}
	require.Len(t, group.Rules, len(expectedAlerts))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}

	assert.Equal(t, "deal_notifier_pipedrive_daily_usage > 8000", group.Rules[4].Expr)

	result := validate.Rules(ruleSpecs(cr), KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run(cfg, false, &out))

	dashJSON, err := os.ReadFile(filepath.Join(cfg.OutputDir, dashboardPath))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(dashJSON, &decoded))
	assert.Equal(t, dashboards.OverviewUID, decoded["uid"])

	for _, path := range []string{recordingPath, alertsPath} {
		data, err := os.ReadFile(filepath.Join(cfg.OutputDir, path))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), generatedHeader), "%s missing header", path)

		var cr rules.PrometheusRule
		require.NoError(t, yaml.Unmarshal(data, &cr))
		assert.Equal(t, "PrometheusRule", cr.Kind)
	}

	assert.Equal(t, 3, strings.Count(out.String(), "wrote "))
}

func TestRun_ValidateOnly(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run(cfg, true, &out))
	assert.Equal(t, "validation passed\n", out.String())

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_RulesOnly(t *testing.T) {
	t.Parallel()

	cfg := Config{OutputDir: t.TempDir(), RulesEnabled: true}
	require.NoError(t, run(cfg, false, &bytes.Buffer{}))

	_, err := os.Stat(filepath.Join(cfg.OutputDir, dashboardPath))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutputDir, alertsPath))
	assert.NoError(t, err)
}
