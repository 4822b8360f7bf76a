package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Bundle file operations",
}

var validateBundleCmd = &cobra.Command{
	Use:   "validate <bundle.json>",
	Short: "Check that a bundle holds a valid dataset and study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := mica.LoadBundle(args[0])
		if err != nil {
			return fmt.Errorf("invalid bundle %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: dataset %s, study %s, %d variables\n",
			args[0], b.Dataset.ID, b.Study.ID, len(b.Variables))
		return nil
	},
}

func init() {
	bundleCmd.AddCommand(validateBundleCmd)
}
