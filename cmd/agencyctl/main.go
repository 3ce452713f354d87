// Command agencyctl inspects the agency record modules offline, straight from
// the seed files, without a running server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	catalogapp "github.com/agencyos/backend/internal/application/catalog"
	"github.com/agencyos/backend/internal/application/records"
	reportapp "github.com/agencyos/backend/internal/application/report"
	"github.com/agencyos/backend/internal/infrastructure/config"
	"github.com/agencyos/backend/internal/infrastructure/seed"
	"github.com/agencyos/backend/internal/infrastructure/vault"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// listFlags holds the parsed flags for the list command.
type listFlags struct {
	search  string
	filters []string
	sort    string
	desc    bool
	json    bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var seedDir, vaultKey string

	root := &cobra.Command{
		Use:           "agencyctl",
		Short:         "Inspect agency records from their seeds",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	pf := root.PersistentFlags()
	pf.StringVar(&seedDir, "seed-dir", "", "Directory of seed files overriding the embedded ones")
	pf.StringVar(&vaultKey, "vault-key", config.DevVaultKey, "Hex key sealing credential secrets")

	load := func() (*catalogapp.Catalog, error) {
		sealer, err := vault.NewSealer(vaultKey)
		if err != nil {
			return nil, err
		}
		return catalogapp.Build(seed.NewSource(seedDir), sealer, records.Deps{})
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "modules",
			Short: "List the record modules with their statuses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := load()
				if err != nil {
					return err
				}
				return printModules(cmd.OutOrStdout(), c.Registry.Describe())
			},
		},
		newListCmd(load),
		&cobra.Command{
			Use:   "show <module> <id>",
			Short: "Show one record with its brands and progress",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := load()
				if err != nil {
					return err
				}
				m, err := c.Registry.Get(args[0])
				if err != nil {
					return err
				}
				detail, err := m.Get(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), detail)
			},
		},
		&cobra.Command{
			Use:   "report",
			Short: "Print the dashboard summary",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := load()
				if err != nil {
					return err
				}
				svc := reportapp.NewService(c.Leads, c.Invoices, c.Payouts, c.Tax, c.Projects, c.Registry, nil)
				summary, err := svc.Summary(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			},
		},
	)
	return root
}

func newListCmd(load func() (*catalogapp.Catalog, error)) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list <module>",
		Short: "Print the derived view of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			c, err := load()
			if err != nil {
				return err
			}
			m, err := c.Registry.Get(args[0])
			if err != nil {
				return err
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), m, q, flags.json)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.search, "search", "", "Free-text search")
	f.StringArrayVar(&flags.filters, "filter", nil, "Facet filter key=value[,value] (may be repeated)")
	f.StringVar(&flags.sort, "sort", "", "Sort field")
	f.BoolVar(&flags.desc, "desc", false, "Sort descending")
	f.BoolVar(&flags.json, "json", false, "Print the full list result as JSON")
	return cmd
}

func (f listFlags) query() (records.ListQuery, error) {
	q := records.ListQuery{Search: f.search, Sort: f.sort}
	if f.desc {
		q.Order = "desc"
	}
	for _, raw := range f.filters {
		key, values, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return q, fmt.Errorf("filter %q: want key=value", raw)
		}
		if q.Filters == nil {
			q.Filters = make(map[string][]string)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" {
				q.Filters[key] = append(q.Filters[key], v)
			}
		}
	}
	return q, nil
}

func runList(ctx context.Context, out io.Writer, m records.Module, q records.ListQuery, asJSON bool) error {
	if asJSON {
		res, err := m.List(ctx, q)
		if err != nil {
			return err
		}
		return writeJSON(out, res)
	}
	table, err := m.Table(ctx, q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(table.Header, "\t")))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d %s\n", len(table.Rows), table.Module)
	return err
}

func printModules(out io.Writer, modules []records.Descriptor) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tKIND\tSTATUSES\tFACETS")
	for _, d := range modules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Kind, strings.Join(d.Statuses, ","), strings.Join(d.Facets, ","))
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
