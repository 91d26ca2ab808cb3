package commands

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/postgres"
)

var (
	scoreCategory string
	scoreTitle    string
	scoreSpecs    []string
	scoreTopN     int
	scoreMinProb  float64
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the top matches of one item in a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		specs := make(map[string]string, len(scoreSpecs))
		for _, kv := range scoreSpecs {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("--spec %q: want key=value", kv)
			}
			specs[k] = v
		}

		cats, err := catalog.LoadCategories(engine.CategoriesPath(cfg.Catalog))
		if err != nil {
			return err
		}
		i := slices.IndexFunc(cats, func(c catalog.Category) bool { return c.ID == scoreCategory })
		if i < 0 {
			return fmt.Errorf("unknown category %q", scoreCategory)
		}

		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}
		var sqlDB *sql.DB
		if cfg.Catalog.Source == "postgres" {
			db, err := postgres.New(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()
			sqlDB = db.DB
		}
		load, err := engine.Loader(cfg.Catalog, sqlDB)
		if err != nil {
			return err
		}
		reg, err := eng.Registry(ctx, cats[i:i+1], load, nil)
		if err != nil {
			return err
		}
		f, err := reg.Get(scoreCategory)
		if err != nil {
			return err
		}
		matches, err := f.TopMatches(ctx, matching.Query{Title: scoreTitle, Specs: specs}, scoreMinProb, scoreTopN)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCategory, "category", "", "category id (required)")
	scoreCmd.Flags().StringVarP(&scoreTitle, "title", "t", "", "item title (required)")
	scoreCmd.Flags().StringArrayVarP(&scoreSpecs, "spec", "s", nil, "item specific as key=value, repeatable")
	scoreCmd.Flags().IntVarP(&scoreTopN, "top", "n", matching.DefaultTopN, "number of matches")
	scoreCmd.Flags().Float64Var(&scoreMinProb, "minprob", matching.DefaultMinProb, "minimum match probability")
	scoreCmd.MarkFlagRequired("category")
	scoreCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(scoreCmd)
}
