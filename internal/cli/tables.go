package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vvka-141/xmlload/internal/config"
	"github.com/vvka-141/xmlload/internal/schema"
	"github.com/vvka-141/xmlload/pkg/xmlload"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [dump_dir]",
	Short: "List the tables xmlload loads",
	Long: `Tables lists the table catalog: the built-in tables plus any declared in
xmlload.yaml when dump_dir is given.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runTables,
}

var tablesJSON bool

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().BoolVar(&tablesJSON, "json", false, "Print the catalog as JSON")
}

type columnView struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

type tableView struct {
	Name    string       `json:"name"`
	Source  string       `json:"source"`
	Columns []columnView `json:"columns"`
}

func catalogFor(args []string) ([]xmlload.TableDefinition, map[string]string, error) {
	if len(args) == 0 {
		return schema.Builtin(), nil, nil
	}

	projectCfg, err := config.LoadOptional(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	extra, err := projectCfg.TableDefinitions()
	if err != nil {
		return nil, nil, err
	}
	catalog, err := schema.Merge(schema.Builtin(), extra)
	if err != nil {
		return nil, nil, err
	}
	files, err := schema.SourceOverrides(catalog, projectCfg.Files)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid files in %s: %w", config.ConfigFileName, err)
	}
	return catalog, files, nil
}

func runTables(cmd *cobra.Command, args []string) error {
	catalog, files, err := catalogFor(args)
	if err != nil {
		return err
	}

	views := make([]tableView, 0, len(catalog))
	for _, def := range catalog {
		v := tableView{Name: def.Name, Source: def.Source}
		if override, ok := files[def.Name]; ok && override != "" {
			v.Source = override
		}
		for _, c := range def.Columns {
			v.Columns = append(v.Columns, columnView{Name: c.Name, Type: c.Type.String(), PrimaryKey: c.PrimaryKey})
		}
		views = append(views, v)
	}

	if tablesJSON {
		return writeJSON(cmd.OutOrStdout(), views)
	}
	return writeTables(cmd.OutOrStdout(), views)
}

func writeTables(w io.Writer, views []tableView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tSOURCE\tCOLUMNS")
	for _, v := range views {
		cols := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			cols[i] = c.Name + " " + c.Type
			if c.PrimaryKey {
				cols[i] += " PK"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Source, strings.Join(cols, ", "))
	}
	return tw.Flush()
}
