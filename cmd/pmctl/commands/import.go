package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/postgres"
)

var importCategory string

var importCmd = &cobra.Command{
	Use:   "import <catalog dir or sheet>",
	Short: "Replace a category's products in Postgres",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(args[0])
		if err != nil {
			return err
		}
		if cat.Len() == 0 {
			return fmt.Errorf("%s has no products", args[0])
		}

		ctx := cmd.Context()
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := catalog.EnsureSchema(ctx, db.DB); err != nil {
			return err
		}
		err = db.InTx(ctx, func(tx *sql.Tx) error {
			return catalog.StoreItems(ctx, tx, importCategory, cat.Items())
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d products into %s\n", cat.Len(), importCategory)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCategory, "category", "", "category id (required)")
	importCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(importCmd)
}
