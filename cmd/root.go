package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cfgpkg "github.com/datamend/datamend-cli/internal/config"
	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/loader"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "datamend",
	Short: "DataMend CLI: score, clean, and transform tabular data",
	Long:  `DataMend is a CLI tool for assessing and repairing tabular data quality: missing values, duplicates, outliers, inconsistent types, and categorical encodings, with reusable cleaning pipelines.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datamend/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c
	if debug {
		cfg.Debug = true
	}
	if cfg.Debug {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}
}

// readDataset loads a CSV/TSV/JSON file and prints a short load line.
func readDataset(path string) (*dataset.Dataset, *loader.FileInfo, error) {
	ds, info, err := loader.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("Loaded %s: %d rows × %d columns\n", info.Name, info.Rows, info.Cols)
	return ds, info, nil
}

// writeDataset writes the dataset to outPath, or to a derived
// "<name>_cleaned.<ext>" next to the input when outPath is empty.
func writeDataset(ds *dataset.Dataset, inPath, outPath string) error {
	if outPath == "" {
		ext := filepath.Ext(inPath)
		outPath = strings.TrimSuffix(inPath, ext) + "_cleaned" + ext
	}
	var err error
	if strings.EqualFold(filepath.Ext(outPath), ".json") {
		err = loader.WriteJSON(ds, outPath)
	} else {
		err = loader.WriteCSV(ds, outPath)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("✓ Wrote %d rows × %d columns to %s\n", ds.Rows(), ds.Cols(), outPath)
	return nil
}
