package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vpnclashfa-backup/freeconfig/internal/collect"
	"github.com/vpnclashfa-backup/freeconfig/internal/metrics"
	"github.com/vpnclashfa-backup/freeconfig/internal/source"
)

type extractOptions struct {
	format        string
	protocols     []string
	subscriptions bool
	summary       bool
	output        string
}

func newExtractCmd(c *cli) *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract [file|dir|url|-]...",
		Short: "Extract validated links from files, directories, URLs or stdin",
		Long: `Reads every source, decodes base64 subscriptions and Clash or sing-box
profiles, validates each link and prints the merged, deduplicated list.
Without arguments the configured collect.sources are used, then stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, c, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json or base64")
	cmd.Flags().StringSliceVarP(&opts.protocols, "protocols", "p", nil, "restrict to these protocols (default from config)")
	cmd.Flags().BoolVar(&opts.subscriptions, "subscriptions", false, "also print discovered subscription URLs")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a summary to stderr")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write links to this file instead of stdout")
	return cmd
}

func runExtract(cmd *cobra.Command, c *cli, opts extractOptions, refs []string) error {
	switch opts.format {
	case "text", "json", "base64":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if len(refs) == 0 {
		refs = c.cfg.Collect.Sources
	}
	if len(refs) == 0 {
		refs = []string{source.Stdin}
	}

	a := newApp(c.cfg, c.logger, opts.protocols)
	report, err := a.collector.Run(cmd.Context(), refs)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeReport(out, report, opts); err != nil {
		return err
	}

	if opts.summary {
		fmt.Fprintln(cmd.ErrOrStderr(), report.Summary())
	}
	if c.cfg.Metrics.Enabled {
		if err := metrics.WriteTextfile(c.cfg.Metrics.Textfile, a.metrics); err != nil {
			c.logger.Warn("metrics textfile not written", "error", err)
		}
	}
	if report.Failed() == len(report.Sources) {
		return errors.New("every source failed")
	}
	return nil
}

func writeReport(w io.Writer, report *collect.Report, opts extractOptions) error {
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if !opts.subscriptions {
			stripped := *report
			stripped.Subscriptions = nil
			return enc.Encode(stripped)
		}
		return enc.Encode(report)
	}

	lines := make([]string, 0, len(report.Links)+len(report.Subscriptions))
	for _, l := range report.Links {
		lines = append(lines, l.Link)
	}
	if opts.subscriptions {
		for _, s := range report.Subscriptions {
			lines = append(lines, s.Link)
		}
	}
	text := strings.Join(lines, "\n")
	if len(lines) > 0 {
		text += "\n"
	}
	if opts.format == "base64" {
		text = base64.StdEncoding.EncodeToString([]byte(text)) + "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}
