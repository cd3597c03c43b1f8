package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bbd/pkg/bbd"
)

const modulePath = "github.com/mesh-intelligence/bbd"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bbd version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "bbd v%s\nmodule: %s\n", bbd.Version, modulePath)
			return nil
		},
	}
}
