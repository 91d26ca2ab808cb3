package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/logger"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pmctl",
	Short: "Operate product matching catalogs and models",
	Long: `pmctl inspects categories, imports catalogs into Postgres, scores items
against a catalog and computes token statistics, using the same configuration
as the matcher service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		lc := cfg.Logging
		lc.Format, lc.File = "text", ""
		if verbose {
			lc.Level = "debug"
		} else {
			lc.Level = "warn"
		}
		logger.Setup(lc)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadCatalog reads a JSON item directory or a product sheet.
func loadCatalog(path string) (*catalog.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog source: %w", err)
	}
	if info.IsDir() {
		return catalog.LoadJSONDir(path)
	}
	return catalog.LoadTabular(path)
}
