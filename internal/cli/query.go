package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bbd/internal/form"
)

func newQueryCmd() *cobra.Command {
	var receipt, item string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List receipt lines matching receipt and item filters",
		Long: "List receipt lines whose receipt number contains --receipt and whose\n" +
			"item number contains --item. At least one filter is required.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return sysError(err)
			}
			defer a.Close()

			f := form.New(a.backend, a.logger, textNotifier{w: cmd.ErrOrStderr()})
			f.SetFilters(receipt, item)

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()
			if err := f.RequestQuery(ctx); err != nil {
				if errors.Is(err, form.ErrBlankFilters) {
					return userError(err)
				}
				return sysError(err)
			}
			return printLines(cmd.OutOrStdout(), f.Grid())
		},
	}
	cmd.Flags().StringVar(&receipt, "receipt", "", "receipt number substring")
	cmd.Flags().StringVar(&item, "item", "", "item number substring")
	return cmd
}

// printLines writes the grid as a table, or as a JSON array in --json mode.
func printLines(w io.Writer, g *form.ReceiptGrid) error {
	if flags.jsonMode {
		output, err := json.MarshalIndent(g.Lines(), "", "  ")
		if err != nil {
			return sysError(fmt.Errorf("marshal lines: %w", err))
		}
		fmt.Fprintln(w, string(output))
		return nil
	}
	if g.Len() == 0 {
		fmt.Fprintln(w, "no matching rows")
		return nil
	}
	fmt.Fprintln(w, g.Grid().Render())
	return nil
}
