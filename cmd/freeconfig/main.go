package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vpnclashfa-backup/freeconfig/internal/config"
	"github.com/vpnclashfa-backup/freeconfig/internal/support/logging"
)

// Build info - injected via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cli holds what PersistentPreRunE loads for the subcommands.
type cli struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "freeconfig",
		Short:         "Extract and validate proxy config links",
		Long:          `freeconfig finds proxy share links (vless, vmess, ss, trojan, hysteria2, ...) in free text, base64 subscriptions, Clash and sing-box profiles, validates them and prints a deduplicated list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logging.New(logging.Options{
				Level:     cfg.Log.SlogLevel(),
				Format:    cfg.Log.Format,
				AddSource: cfg.Log.AddSource,
				Writer:    cmd.ErrOrStderr(),
			})
			slog.SetDefault(c.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default ./config.yaml or /etc/freeconfig/config.yaml)")

	root.AddCommand(
		newExtractCmd(c),
		newProtocolsCmd(c),
		newServeCmd(c),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			// skip config loading
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "freeconfig %s\nCommit: %s\nBuild Time: %s\n", Version, Commit, BuildTime)
			},
		},
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
