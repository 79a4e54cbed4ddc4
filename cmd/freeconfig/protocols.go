package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vpnclashfa-backup/freeconfig/internal/protocol"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)

func newProtocolsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "protocols",
		Short: "List the active protocols in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := protocol.NewRegistry(c.cfg.Parser.Protocols, protocol.WithLogger(c.logger))
			fmt.Fprintln(cmd.OutOrStdout(), protocolTable(reg.Descriptors()))
			return nil
		},
	}
}

func protocolTable(descs []protocol.Descriptor) string {
	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		prefixes := strings.Join(d.Prefixes, " ")
		if prefixes == "" && d.Parent != "" {
			prefixes = "(via " + d.Parent + ")"
		}
		rows = append(rows, []string{d.Name, prefixes, d.Parent})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("NAME", "PREFIXES", "PARENT").
		Rows(rows...).
		String()
}
