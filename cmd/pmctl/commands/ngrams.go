package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/engine"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/ngrams"
)

var ngramsOut string

var ngramsCmd = &cobra.Command{
	Use:   "ngrams <catalog dir or sheet>",
	Short: "Write unigram frequencies of a catalog as token<TAB>count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(args[0])
		if err != nil {
			return err
		}
		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}
		if err := eng.Prep.PreprocessAll(cmd.Context(), cat.Items(), cfg.Matching.Workers); err != nil {
			return err
		}

		counter := ngrams.NewCounter()
		for _, it := range cat.Items() {
			counter.AddItem(it)
		}

		var out io.Writer = cmd.OutOrStdout()
		if ngramsOut != "" && ngramsOut != "-" {
			f, err := os.Create(ngramsOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if _, err := counter.WriteTo(out); err != nil {
			return fmt.Errorf("writing frequencies: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d distinct tokens, %d total, %d items\n", counter.Len(), counter.Total(), cat.Len())
		return nil
	},
}

func init() {
	ngramsCmd.Flags().StringVarP(&ngramsOut, "out", "o", "-", "output file")
	rootCmd.AddCommand(ngramsCmd)
}
