package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/presenterapp/presenter/internal/domain"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/service"
)

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <entry-id>...",
		Short: "Lay out entries as slides and write the deck outline",
		Long: `Export turns the entries, in the given order, into slides. Text is split
into sections at "[Name]" marker lines and each section is paged by the
template rule matching its name. The outline goes to stdout unless --output
names a file or directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := do.MustInvoke[*service.ExportService](a.injector)
			tmpl := do.MustInvoke[domain.PresentationTemplate](a.injector)

			if output == "" {
				if _, err := svc.Export(cmd.Context(), args, tmpl, cmd.OutOrStdout()); err != nil {
					return a.fail(err, "export failed")
				}
				return nil
			}

			path := output
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, "deck"+svc.Extension())
			}

			var deck *domain.Deck
			err := writeDeck(path, func(w io.Writer) error {
				d, err := svc.Export(cmd.Context(), args, tmpl, w)
				deck = d
				return err
			})
			if err != nil {
				return a.fail(err, "export failed")
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d slides to %s\n", len(deck.Slides), path)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the outline to this file or directory")
	return cmd
}

// writeDeck writes through a temporary file so a failed export leaves no
// partial outline behind.
func writeDeck(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".deck-*")
	if err != nil {
		return domainerrors.Validationf("cannot write to %s", path).WithCause(err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
