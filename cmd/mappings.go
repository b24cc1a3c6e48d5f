package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"material-reconciler/feature/materials/mappings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportFormat string
	exportOut    string
	importFile   string
)

// mappingsCmd groups mapping maintenance commands.
var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List, export and import material mappings",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		lister, err := d.lister()
		if err != nil {
			return err
		}
		list, err := lister.List(ctx)
		if err != nil {
			return err
		}

		for _, m := range list {
			fmt.Printf("%-40s %-16s -> #%-6d %-6s %.3f %s\n",
				m.CalculatorName, m.CalculatorCategory, m.WarehouseID, m.MappingType, m.Confidence, m.ConfirmedBy)
		}
		fmt.Printf("\nTotal: %d\n", len(list))
		return nil
	},
}

var mappingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export mappings as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		lister, err := d.lister()
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		n, err := mappings.Export(ctx, lister, w, exportFormat)
		if err != nil {
			return err
		}
		d.logger.Info("Mappings exported", zap.Int("count", n), zap.String("format", exportFormat))
		return nil
	},
}

var mappingsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import mappings from a YAML or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		d, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		store, err := d.mappingStore()
		if err != nil {
			return err
		}

		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", importFile, err)
		}
		defer f.Close()

		format := strings.TrimPrefix(strings.ToLower(filepath.Ext(importFile)), ".")
		n, err := mappings.Import(ctx, store, f, format)
		if err != nil {
			d.logger.Error("Import stopped", zap.Int("imported", n), zap.Error(err))
			return err
		}
		d.logger.Info("Mappings imported", zap.Int("count", n), zap.String("file", importFile))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsListCmd, mappingsExportCmd, mappingsImportCmd)

	mappingsExportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "Export format (yaml|json)")
	mappingsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (stdout by default)")
	mappingsImportCmd.Flags().StringVarP(&importFile, "file", "f", "", "File to import (.yaml, .yml or .json)")
	_ = mappingsImportCmd.MarkFlagRequired("file")
}
