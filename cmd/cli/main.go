// The mechint CLI drives the assessment engine from job files: assess a
// job, read and verify the audit chain, list material coverage. With no
// DATABASE_URL it runs against the in-memory audit store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"mechintegrity/adapters/asme"
	"mechintegrity/adapters/memory"
	"mechintegrity/adapters/postgres"
	"mechintegrity/app"
	"mechintegrity/domain/assessment"
	"mechintegrity/internal/config"
	"mechintegrity/internal/logging"
	"mechintegrity/internal/policy"
	"mechintegrity/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "mechint",
		Short: "Fitness-for-service assessment engine (API 579-1 Level 1)",
	}
	rootCmd.AddCommand(newAssessCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newMaterialsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildService() (*app.AssessmentService, ports.MaterialTable, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Engine.LogLevel)

	var auditLog ports.AuditLog
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		auditLog = postgres.NewAuditRepository(db)
	} else {
		auditLog = memory.NewAuditLog()
	}

	table := asme.NewBuiltin()
	resolver := app.NewPropertyResolver(table)
	svc := app.NewAssessmentService(resolver, auditLog, app.NewMonotonicClock(), policy.Default(), logger)
	return svc, table, nil
}

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess <job.json>",
		Short: "Run one fitness-for-service assessment from a job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var job assessment.Job
			if err := json.Unmarshal(data, &job); err != nil {
				return fmt.Errorf("parse job file: %w", err)
			}

			svc, _, err := buildService()
			if err != nil {
				return err
			}
			res, err := svc.Assess(context.Background(), job)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var fromSeq, toSeq int64
	cmd := &cobra.Command{
		Use:   "verify-audit",
		Short: "Recompute hashes and chain linkage over the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildService()
			if err != nil {
				return err
			}
			res, err := svc.VerifyAudit(context.Background(), fromSeq, toSeq)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !res.OK {
				return fmt.Errorf("chain broken at seq %d (%s)", res.FirstBadSeq, res.FirstBadHash.String())
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&fromSeq, "from", 1, "first sequence number to verify")
	cmd.Flags().Int64Var(&toSeq, "to", -1, "last sequence number to verify (-1 = head)")
	return cmd
}

func newMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List tabulated materials and their temperature coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := buildService()
			if err != nil {
				return err
			}
			coverage, err := table.Coverage(context.Background())
			if err != nil {
				return err
			}
			for _, c := range coverage {
				fmt.Printf("%-16s %6s..%s °F  (%d points, %s %s %s)\n",
					c.Material.String(), c.MinTemp.String(), c.MaxTemp.String(),
					c.Points, c.Provenance.Document, c.Provenance.Table, c.Provenance.Edition)
			}
			return nil
		},
	}
}
