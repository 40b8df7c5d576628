package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core/circuit"
)

// listLevels validates the catalog at path, then prints it: a table on a terminal, JSON otherwise.
func (cli *commandLine) listLevels(path string) error {
	levels, err := circuit.LoadCatalog(path, cli.validate)
	if err != nil {
		return errors.Wrap(err, "loading level catalog")
	}

	if !isTerminalFunc() {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(levels.All())
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tPALETTE\tTARGETS")
	for i, lvl := range levels.All() {
		palette := make([]string, len(lvl.Palette))
		for j, item := range lvl.Palette {
			palette[j] = fmt.Sprintf("%s x%d", item.Type, item.Max)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			i+1, lvl.ID, lvl.Title, strings.Join(palette, ", "), strings.Join(lvl.Targets.Active(), ", "))
	}
	return w.Flush()
}
