package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/accredify/accredify-backend/internal/app"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "accredctl",
		Short:   "Operational tooling for the accreditation compliance backend",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigFile(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML file of environment overrides (key: value)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newRecalcCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// applyConfigFile loads a flat YAML map and exports each pair into the
// process environment before the app wires itself. Existing environment
// variables win over file values.
func applyConfigFile(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	overrides := map[string]string{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	for key, value := range overrides {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}
			defer a.Close()
			a.Log.Info("Server listening", "port", a.Cfg.Port)
			return a.Run()
		},
	}
}

func newImportCmd() *cobra.Command {
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "import <checklist.csv>",
		Short: "Import a checklist CSV into a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := uuid.Parse(projectFlag)
			if err != nil {
				return fmt.Errorf("invalid --project id: %w", err)
			}

			a, err := app.New()
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			report, err := a.Services.Importer.ImportCSV(context.Background(), projectID, f)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().StringVar(&projectFlag, "project", "", "Target project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newRecalcCmd() *cobra.Command {
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate compliance status for every obligation in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := uuid.Parse(projectFlag)
			if err != nil {
				return fmt.Errorf("invalid --project id: %w", err)
			}

			a, err := app.New()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			obligations, err := a.Repos.Obligation.ListByProject(ctx, nil, projectID)
			if err != nil {
				return err
			}
			changed := 0
			for _, ob := range obligations {
				res, err := a.Services.Compliance.Recalculate(ctx, ob.ID)
				if err != nil {
					a.Log.Warn("recalculate failed", "obligation_id", ob.ID, "error", err)
					continue
				}
				if res.Status != ob.ComplianceStatus {
					changed++
				}
			}
			fmt.Printf("recalculated %d obligations, %d changed\n", len(obligations), changed)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectFlag, "project", "", "Target project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
