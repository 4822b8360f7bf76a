package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ET "github.com/IBM/fp-go/v2/either"
	"github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"github.com/spf13/cobra"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/extract"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
	T "github.com/Qubut/IP-Claim/packages/mica_doi/internal/typing"
)

var extractCmd = &cobra.Command{
	Use:         "extract <dataset-id>",
	Short:       "Fetch a dataset, its variables and its study from Mica into a bundle",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{credentialsAnnotation: micaCredentials},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		res := function.Pipe1(
			services.Extractor.Extract(ctx, args[0]),
			IOE.Tap(func(b mica.Bundle) IOE.IOEither[error, T.Unit] {
				return extract.WriteBundle(cfg.Extract.Output, cmd.OutOrStdout(), b)
			}),
		)()
		b, err := ET.UnwrapError(res)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}

		if cfg.Extract.VariablesCSV != "" {
			if err := services.Exporter.VariablesToCSV(ctx, b.Variables, cfg.Extract.VariablesCSV); err != nil {
				return fmt.Errorf("export variables: %w", err)
			}
		}
		logger.Infow("Bundle written",
			"dataset", b.Dataset.ID,
			"study", b.Study.ID,
			"variables", len(b.Variables),
			"output", function.Ternary(
				func(p string) bool { return p == "" },
				function.Constant1[string, string]("stdout"),
				function.Identity[string],
			)(cfg.Extract.Output),
		)
		return nil
	},
}

func init() {
	addConfigFlags(extractCmd.Flags(), []flagDef{
		{"extract.output", "Bundle file; empty writes to stdout", ""},
		{"extract.variables_csv", "Also write the variable summaries to this CSV file", ""},
		{"extract.progress", "Show progress on stderr", false},
	})
}
