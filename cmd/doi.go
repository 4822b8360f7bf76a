package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	ET "github.com/IBM/fp-go/v2/either"
	"github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"github.com/spf13/cobra"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/datacite"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

var doiCmd = &cobra.Command{
	Use:   "doi",
	Short: "DataCite DOI operations",
}

var generateDOICmd = &cobra.Command{
	Use:         "generate <bundle.json>",
	Short:       "Build a DataCite submission from a bundle and register it",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{credentialsAnnotation: dataciteCredentials},
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := mica.LoadBundle(args[0])
		if err != nil {
			return fmt.Errorf("load bundle %s: %w", args[0], err)
		}
		static, err := datacite.LoadStaticConfig(cfg.DOI.Config)
		if err != nil {
			return fmt.Errorf("load doi config %s: %w", cfg.DOI.Config, err)
		}
		submission, err := datacite.Build(b.Dataset, b.Study, b.Metadata, static)
		if err != nil {
			return fmt.Errorf("build submission: %w", err)
		}

		if cfg.DOI.DryRun {
			data, err := json.MarshalIndent(datacite.NewCreateRequest(submission), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal submission: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			logger.Infow("Dry run, nothing sent", "doi", static.DOI())
			return nil
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return echo(cmd.OutOrStdout(), "create doi", services.Registry.Create(ctx, submission))
	},
}

var getDOICmd = &cobra.Command{
	Use:   "get <doi>",
	Short: "Print the DataCite record of a DOI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return echo(cmd.OutOrStdout(), "get doi", services.Registry.Get(ctx, args[0]))
	},
}

var updateDOICmd = &cobra.Command{
	Use:         "update <doi> <attributes.json>",
	Short:       "Replace attributes of an existing DOI",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{credentialsAnnotation: dataciteCredentials},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read attributes: %w", err)
		}
		var attributes map[string]any
		if err := json.Unmarshal(data, &attributes); err != nil {
			return fmt.Errorf("attributes %s must be a JSON object: %w", args[1], err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return echo(cmd.OutOrStdout(), "update doi", services.Registry.Update(ctx, args[0], attributes))
	},
}

var publishDOICmd = &cobra.Command{
	Use:         "publish <doi>",
	Short:       "Make a draft DOI findable",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{credentialsAnnotation: dataciteCredentials},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return echo(cmd.OutOrStdout(), "publish doi", services.Registry.Publish(ctx, args[0]))
	},
}

// echo runs call and writes its JSON response to w, indented.
func echo(w io.Writer, op string, call IOE.IOEither[error, []byte]) error {
	return function.Pipe1(
		call(),
		ET.Fold(
			func(e error) error { return fmt.Errorf("%s: %w", op, e) },
			func(body []byte) error {
				var out bytes.Buffer
				if err := json.Indent(&out, body, "", "  "); err != nil {
					// not JSON, echo as received
					out.Reset()
					out.Write(body)
				}
				out.WriteByte('\n')
				_, err := out.WriteTo(w)
				return err
			},
		),
	)
}

func init() {
	addConfigFlags(doiCmd.PersistentFlags(), []flagDef{
		{"doi.config", "Static DataCite configuration file (json/yaml)", "doi.json"},
	})
	addConfigFlags(generateDOICmd.Flags(), []flagDef{
		{"doi.dry_run", "Print the submission instead of sending it", false},
	})

	doiCmd.AddCommand(generateDOICmd)
	doiCmd.AddCommand(getDOICmd)
	doiCmd.AddCommand(updateDOICmd)
	doiCmd.AddCommand(publishDOICmd)
}
