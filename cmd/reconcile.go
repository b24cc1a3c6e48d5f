package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"material-reconciler/core/reconcile"
	"material-reconciler/feature/materials"
	"material-reconciler/feature/materials/mappings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	reconcileFile   string
	reconcileFormat string
	dryRunReconcile bool
	jsonReport      bool
)

// reconcileCmd runs one batch from a file.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a batch of calculator materials from a file",
	Long: `Reconcile a calculator material list (JSON or CSV) against the warehouse catalog.

Confident matches are stored as auto mappings unless --dry-run is set.

Examples:
  # Report and store auto mappings
  reconcile --file order.json

  # Report only, nothing is written
  reconcile --file order.csv --dry-run

  # Save the full result next to the metrics
  reconcile --file order.json --json`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileFile, "file", "f", "", "Batch file (.json or .csv)")
	reconcileCmd.Flags().StringVar(&reconcileFormat, "format", "", "Batch format (json|csv), detected from the extension by default")
	reconcileCmd.Flags().BoolVar(&dryRunReconcile, "dry-run", false, "Do not persist any mapping")
	reconcileCmd.Flags().BoolVar(&jsonReport, "json", false, "Save the full result as JSON")
	_ = reconcileCmd.MarkFlagRequired("file")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	startTime := time.Now()

	format := reconcileFormat
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(reconcileFile)), ".")
	}

	f, err := os.Open(reconcileFile)
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	req, err := materials.ParseBatch(f, format)
	_ = f.Close()
	if err != nil {
		return err
	}

	d, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer d.Close()
	logg := d.logger

	if err := req.Validate(d.cfg.Matching.MaxBatch); err != nil {
		return err
	}

	source, err := d.catalogCache()
	if err != nil {
		return err
	}
	store, err := d.mappingStore()
	if err != nil {
		return err
	}
	var dry *mappings.DryRun
	if dryRunReconcile {
		dry = mappings.NewDryRun(store, logg)
		store = dry
		logg.Info("Running in dry-run mode, no mappings will be written")
	}

	engine := reconcile.NewEngine(source, store, d.cfg.Matching, logg)
	runCtx, cancel := context.WithTimeout(ctx, d.cfg.Server.RequestTimeout())
	defer cancel()

	session, res, err := engine.Reconcile(runCtx, req.ToDomain())
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	if jsonReport {
		filename := fmt.Sprintf("reconcile_%d.json", time.Now().Unix())
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to save JSON file: %w", err)
		}
		logg.Info("Detailed JSON report saved", zap.String("file", filename))
	}

	executionTime := time.Since(startTime)

	// Always display metrics
	fmt.Println("\n=== Reconciliation Metrics ===")
	fmt.Printf("Session: %s\n", res.SessionID)
	fmt.Printf("Total Lines: %d (unique: %d)\n", res.Summary.Total, res.Summary.UniqueKeys)
	fmt.Printf("Processed: %d (store: %d, auto: %d)\n", res.Summary.Processed, res.Summary.FromStore, res.Summary.Auto)
	fmt.Printf("Unmapped: %d (invalid: %d)\n", res.Summary.Unmapped, res.Summary.Invalid)
	if res.Summary.NotPersisted > 0 {
		fmt.Printf("Not Persisted: %d\n", res.Summary.NotPersisted)
	}
	if dry != nil {
		fmt.Printf("Pending (dry-run): %d\n", len(dry.Pending()))
	}
	fmt.Printf("Execution Time: %s\n", executionTime.String())

	if len(res.Unmapped) > 0 {
		fmt.Println("\n=== Needs Review ===")
		for _, u := range res.Unmapped {
			line := fmt.Sprintf("[%s] %s", u.CalculatorMaterial.ID, u.CalculatorMaterial.Name)
			switch {
			case u.Diagnostic != "":
				line += fmt.Sprintf(" (%s)", u.Diagnostic)
			case len(u.SuggestedMatches) > 0:
				top := u.SuggestedMatches[0]
				line += fmt.Sprintf(" -> #%d %s (%.3f)", top.WarehouseMatch.ID, top.WarehouseMatch.Name, top.Similarity)
			}
			fmt.Println(line)
		}
	}

	fmt.Println("\n=== Demand by Material ===")
	for _, q := range session.Quantities() {
		fmt.Printf("%-40s %-16s %10.3f (%d lines)\n", q.Name, q.Category, q.Quantity, q.Lines)
	}

	logg.Info("Reconciliation completed",
		zap.Int("total", res.Summary.Total),
		zap.Int("processed", res.Summary.Processed),
		zap.Int("unmapped", res.Summary.Unmapped),
		zap.Bool("dry_run", dryRunReconcile),
		zap.Duration("execution_time", executionTime),
	)

	return nil
}
