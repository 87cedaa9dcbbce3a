package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/media"
	"github.com/presenterapp/presenter/internal/seed"
	"github.com/presenterapp/presenter/internal/service"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <library.yaml>",
		Short: "Create book types, books and entries from a YAML file",
		Long: `Import reads a YAML library description and creates everything in it.
Image and PDF blocks may name a "source" file, relative to the YAML file,
which is copied into the media directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, baseDir, err := seed.LoadFile(args[0])
			if err != nil {
				return a.fail(seedError(err), "load seed failed")
			}

			report, err := seed.Apply(cmd.Context(),
				do.MustInvoke[*service.LibraryService](a.injector),
				lib,
				seed.WithMedia(do.MustInvoke[*media.Storage](a.injector), baseDir),
				seed.WithLogger(a.logger().Logger),
			)
			if err != nil {
				return a.fail(seedError(err), "import failed")
			}

			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), report)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d book types, %d books, %d attributes, %d tags, %d entries and %d media files.\n",
				report.BookTypes, report.Books, report.Attributes, report.Tags, report.Entries, report.Media)
			return err
		},
	}
}

// seedError shows problems in the file itself to the user. Errors already
// carrying a code keep it.
func seedError(err error) error {
	var de *domainerrors.Error
	if domainerrors.As(err, &de) {
		return err
	}
	return domainerrors.Validation(err.Error()).WithCause(err)
}
