package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	"github.com/reglet-dev/scatslx/internal/application/services"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

type decodeOptions struct {
	kind   string
	format string
	strict bool
}

func newDecodeCmd() *cobra.Command {
	opts := &decodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Decode a single plan token",
		Long: `Decode one phase-plan (PP) or link-plan (LP) token and print the offset,
phase and linked site it describes, together with the legacy 5-tuple.`,
		Example: `  scatslx decode 0,0F
  scatslx decode "5SL1073^2"
  scatslx decode 30,30B1073 --kind lp --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "pp", "Plan kind: pp or lp")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table, json, yaml")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on a non-numeric linked site")
	return cmd
}

func runDecode(w io.Writer, token string, opts *decodeOptions) error {
	kind, err := values.ParsePlanKind(opts.kind)
	if err != nil {
		return err
	}

	resp, err := services.DecodeToken(dto.DecodeRequest{
		Kind:   kind,
		Token:  token,
		Strict: opts.strict,
	})
	if err != nil {
		return err
	}

	switch opts.format {
	case "table":
		return writeDecodeTable(w, resp)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		data, err := yaml.Marshal(resp)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("invalid format: %s (valid: table, json, yaml)", opts.format)
	}
}

//nolint:errcheck // Best-effort terminal output
func writeDecodeTable(w io.Writer, resp *dto.DecodeResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	o := resp.Offset

	fmt.Fprintf(tw, "token\t%s\n", resp.Token)
	fmt.Fprintf(tw, "kind\t%s\n", resp.Kind)
	if resp.Canonical != "" {
		fmt.Fprintf(tw, "canonical\t%s\n", resp.Canonical)
	}
	fmt.Fprintf(tw, "offset_low\t%s\n", o.OffsetLow)
	fmt.Fprintf(tw, "offset_high\t%s\n", o.OffsetHigh)
	fmt.Fprintf(tw, "phase\t%s\n", o.Phase)
	fmt.Fprintf(tw, "start_of_phase\t%t\n", o.StartOfPhase)
	fmt.Fprintf(tw, "slaved\t%t\n", o.Slaved)
	fmt.Fprintf(tw, "linked_site\t%s\n", o.Link)
	if o.IsFallback() {
		fmt.Fprintf(tw, "fallback\t%s\n", o.Fallback)
	}
	fmt.Fprintf(tw, "tuple\t(%s)\n", strings.Join(resp.Tuple[:], ", "))
	for _, issue := range resp.Issues {
		fmt.Fprintf(tw, "issue\t%s: %s\n", issue.Kind, issue.Message)
	}
	return tw.Flush()
}
