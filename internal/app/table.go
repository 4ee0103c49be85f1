package app

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// printTable prints a boxed table whose first row is the header.
func printTable(w io.Writer, data [][]string) {
	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.Printfln("Failed to output table: %s", err.Error())
		return
	}

	fmt.Fprintln(w, str)
}
