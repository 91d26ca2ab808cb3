package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
)

var exactKeys []string

var exactCmd = &cobra.Command{
	Use:   "exact <item-a.json> <item-b.json>",
	Short: "Compare two catalog items on exact specifics values",
	Long: `exact prints yes when every key is present in both items with the same
value, no on the first differing value and unknown when a key is missing or
empty on either side.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readItem(args[0])
		if err != nil {
			return err
		}
		b, err := readItem(args[1])
		if err != nil {
			return err
		}
		verdict := matching.NewExactSpecMatcher(exactKeys...).Match(a, b)
		fmt.Fprintln(cmd.OutOrStdout(), verdict)
		return nil
	},
}

func readItem(path string) (*item.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	it, err := catalog.DecodeJSONItem(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return it, nil
}

func init() {
	exactCmd.Flags().StringSliceVarP(&exactKeys, "keys", "k", []string{"brand", "model"}, "specifics keys to compare")
	rootCmd.AddCommand(exactCmd)
}
