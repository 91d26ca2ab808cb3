package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/engine"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories of the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cats, err := catalog.LoadCategories(engine.CategoriesPath(cfg.Catalog))
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLABEL")
		for _, c := range cats {
			fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Label)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
