package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/deal-notifier/tools/dashgen/dashboards"
	"github.com/donaldgifford/deal-notifier/tools/dashgen/rules"
	"github.com/donaldgifford/deal-notifier/tools/dashgen/validate"
)

// generatedHeader is prepended to every generated YAML file.
const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

// Output paths relative to Config.OutputDir.
var (
	dashboardPath = filepath.Join("grafana", "data", dashboards.OverviewUID+".json")
	recordingPath = filepath.Join("prometheus", "deal-notifier-recording-rules.yaml")
	alertsPath    = filepath.Join("prometheus", "deal-notifier-alerts.yaml")
)

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// artifact is one generated file.
type artifact struct {
	path string
	data []byte
}

func run(cfg Config, validateOnly bool, out io.Writer) error {
	arts, res, err := generate(cfg)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if !res.Ok() {
		return fmt.Errorf("validation failed:\n  %s", strings.Join(res.Errors, "\n  "))
	}

	if validateOnly {
		fmt.Fprintln(out, "validation passed")
		return nil
	}

	for _, a := range arts {
		path := filepath.Join(cfg.OutputDir, a.path)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("creating directory for %s: %w", a.path, err)
		}
		if err := os.WriteFile(path, a.data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", a.path, err)
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

// generate builds and validates every enabled artifact.
func generate(cfg Config) ([]artifact, validate.Result, error) {
	var (
		arts []artifact
		res  validate.Result
	)

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return nil, res, fmt.Errorf("building overview dashboard: %w", err)
		}
		res.Merge(validate.Dashboard(dash, KnownMetrics))

		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return nil, res, fmt.Errorf("encoding overview dashboard: %w", err)
		}
		arts = append(arts, artifact{path: dashboardPath, data: append(data, '\n')})
	}

	if cfg.RulesEnabled {
		for path, cr := range map[string]rules.PrometheusRule{
			recordingPath: rules.RecordingRules(),
			alertsPath:    rules.AlertRules(),
		} {
			res.Merge(validate.Rules(ruleSpecs(cr), KnownMetrics))

			data, err := yaml.Marshal(cr)
			if err != nil {
				return nil, res, fmt.Errorf("encoding %s: %w", cr.Metadata.Name, err)
			}
			arts = append(arts, artifact{path: path, data: append([]byte(generatedHeader), data...)})
		}
	}

	if len(arts) == 0 {
		return nil, res, errors.New("nothing to generate")
	}
	return arts, res, nil
}

func ruleSpecs(cr rules.PrometheusRule) []validate.RuleSpec {
	var specs []validate.RuleSpec
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			specs = append(specs, validate.RuleSpec{
				Record: r.Record,
				Alert:  r.Alert,
				Expr:   r.Expr,
				For:    r.For,
			})
		}
	}
	return specs
}
