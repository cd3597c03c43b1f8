package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bbd/internal/form"
	"github.com/mesh-intelligence/bbd/pkg/types"
)

// errEmptyValue is returned when --value is empty; an empty value never
// reaches the store.
var errEmptyValue = errors.New("value must not be empty")

func newEditCmd() *cobra.Command {
	var (
		rowID         int64
		value         string
		receipt, item string
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Set the BBD value of one receipt line",
		Long: "Write --value to the tracking column of the line with row id --id.\n" +
			"With --receipt or --item the matching lines are listed afterwards.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if value == "" {
				return userError(errEmptyValue)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return sysError(err)
			}
			defer a.Close()

			f := form.New(a.backend, a.logger, textNotifier{w: cmd.ErrOrStderr()})
			f.SetFilters(receipt, item)

			ctx, cancel := a.callContext(cmd.Context())
			defer cancel()
			if err := f.CommitEdit(ctx, form.EditRequest{RowID: rowID}, value); err != nil {
				if errors.Is(err, types.ErrRowNotFound) {
					return userError(err)
				}
				return sysError(err)
			}

			if receipt == "" && item == "" {
				if !flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "row %d updated\n", rowID)
				}
				return nil
			}
			return printLines(cmd.OutOrStdout(), f.Grid())
		},
	}
	cmd.Flags().Int64Var(&rowID, "id", 0, "row id of the line to change")
	cmd.Flags().StringVar(&value, "value", "", "new BBD value")
	cmd.Flags().StringVar(&receipt, "receipt", "", "receipt filter to list afterwards")
	cmd.Flags().StringVar(&item, "item", "", "item filter to list afterwards")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
