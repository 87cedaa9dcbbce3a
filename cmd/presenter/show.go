package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/presenterapp/presenter/internal/service"
)

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show every attribute of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := do.MustInvoke[*service.LibraryService](a.injector)
			detail, err := lib.EntryDetail(cmd.Context(), args[0])
			if err != nil {
				return a.fail(err, "show entry failed")
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), detail)
			}
			return printDetail(cmd.OutOrStdout(), detail)
		},
	}
}

func printDetail(w io.Writer, d *service.EntryDetail) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry  %s\n", d.Entry.ID)
	fmt.Fprintf(&b, "Book   %s\n", d.Book.Name)
	fmt.Fprintf(&b, "Added  %s\n", d.Entry.DateAdded.Local().Format("2006-01-02 15:04"))
	if len(d.Tags) > 0 {
		names := make([]string, 0, len(d.Tags))
		for _, t := range d.Tags {
			names = append(names, t.Name)
		}
		fmt.Fprintf(&b, "Tags   %s\n", strings.Join(names, ", "))
	}

	for _, f := range d.Fields {
		fmt.Fprintf(&b, "\n%s (%s)\n", f.Definition.Name, f.Definition.Type)
		display := f.Display
		if f.Missing {
			display = "-"
		}
		for _, line := range strings.Split(display, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
