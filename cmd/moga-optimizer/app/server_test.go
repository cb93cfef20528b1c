/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mihai-snyk/moga-optimizer/pkg/api/v1alpha1"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/util"
)

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")

	t.Run("generate-catalog", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewOptimizerCommand(&out)
		cmd.SetArgs([]string{"generate-catalog", "--catalog-size=12", "--catalog-seed=4"})
		if err := cmd.Execute(); err != nil {
			t.Fatal(err)
		}

		var services []v1alpha1.Service
		if err := json.Unmarshal(out.Bytes(), &services); err != nil {
			t.Fatal(err)
		}
		if len(services) != 12 {
			t.Fatalf("Expected 12 services, got %d", len(services))
		}
		if err := os.WriteFile(catalogPath, out.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("optimize", func(t *testing.T) {
		outputDir := filepath.Join(dir, "plot_data")
		var out bytes.Buffer
		cmd := NewOptimizerCommand(&out)
		cmd.SetArgs([]string{"optimize",
			"--catalog-file", catalogPath,
			"--seed=8",
			"--generations=5",
			"--output-dir", outputDir,
		})
		if err := cmd.Execute(); err != nil {
			t.Fatal(err)
		}

		var selections []v1alpha1.ServiceSelection
		if err := json.Unmarshal(out.Bytes(), &selections); err != nil {
			t.Fatal(err)
		}
		if len(selections) == 0 || len(selections) > 3 {
			t.Errorf("Expected 1 to 3 selections, got %d", len(selections))
		}
		for _, name := range []string{util.ConvergenceCSV, util.FinalGenerationCSV, util.FrontPlot} {
			if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
				t.Errorf("Expected %s to be written: %v", name, err)
			}
		}
	})

	t.Run("plot", func(t *testing.T) {
		outputDir := filepath.Join(dir, "tables_only")
		cmd := NewOptimizerCommand(&bytes.Buffer{})
		cmd.SetArgs([]string{"optimize", "--catalog-file", catalogPath, "--seed=8", "--generations=3",
			"--output-dir", outputDir, "--skip-plots"})
		if err := cmd.Execute(); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(outputDir, util.ConvergencePlot)); !os.IsNotExist(err) {
			t.Fatal("Expected no charts with --skip-plots")
		}

		cmd = NewOptimizerCommand(&bytes.Buffer{})
		cmd.SetArgs([]string{"plot", "--output-dir", outputDir})
		if err := cmd.Execute(); err != nil {
			t.Fatal(err)
		}
		for _, name := range []string{util.ConvergencePlot, util.FrontPlot, util.DistributionPlot} {
			if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
				t.Errorf("Expected %s to be rendered: %v", name, err)
			}
		}
	})

	t.Run("invalid args", func(t *testing.T) {
		cmd := NewOptimizerCommand(&bytes.Buffer{})
		cmd.SetArgs([]string{"optimize", "--population-size=3"})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.Execute(); err == nil {
			t.Error("Expected an odd population to be rejected")
		}
	})

	t.Run("exclusive catalog sources", func(t *testing.T) {
		cmd := NewOptimizerCommand(&bytes.Buffer{})
		cmd.SetArgs([]string{"optimize", "--catalog-file", catalogPath, "--catalog-url", "http://localhost"})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.Execute(); err == nil {
			t.Error("Expected conflicting catalog sources to be rejected")
		}
	})
}
