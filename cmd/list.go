package cmd

import (
	"io"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/taoky/hourlog/pkg/analyze"
	"github.com/taoky/hourlog/pkg/parser"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <item>",
		Short: "List various items",
		Args:  cobra.NoArgs,
		RunE:  showHelp,
	}
	cmd.AddCommand(listParsersCmd(), listDomainsCmd())
	return cmd
}

func newListTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(
		w,
		tablewriter.WithHeaderAutoWrap(tw.WrapNone),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		// two spaces between columns, no borders
		tablewriter.WithPadding(tw.Padding{
			Right:     "  ",
			Overwrite: true,
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
	)
}

func listParsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parsers",
		Short: "List available log parsers",
		Args:  cobra.NoArgs,
	}
	var all bool
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show all parsers")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		table := newListTable(cmd.OutOrStdout())
		table.Header("Name", "Description")

		parsers := parser.All()
		slices.SortFunc(parsers, func(a, b parser.ParserMeta) int {
			return strings.Compare(a.Name, b.Name)
		})
		for _, p := range parsers {
			if all || !p.Hidden {
				if err := table.Append([]string{p.Name, p.Description}); err != nil {
					return err
				}
			}
		}
		return table.Render()
	}
	return cmd
}

func listDomainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List the domains of the registry with their log directory",
		Args:  cobra.NoArgs,
	}
	sc := analyze.DefaultConfig().SourceConfig
	sc.InstallFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		reg, err := sc.LoadRegistry()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		table := newListTable(cmd.OutOrStdout())
		table.Header("Domain", "User", "Log Directory")
		for _, e := range reg.Entries() {
			if err := table.Append([]string{e.Domain, e.User, sc.UserLogDir(e.User)}); err != nil {
				return err
			}
		}
		return table.Render()
	}
	return cmd
}
