package main

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/presenterapp/presenter/internal/service"
)

func (a *app) deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an entry, book, book type, tag or attribute",
		Long: `Delete removes one item and everything that depends on it. Deleting a book
type removes its books, their entries and all their attributes; deleting an
attribute removes its values from every entry.`,
	}

	kinds := []struct {
		use, short string
		aliases    []string
		del        func(*service.LibraryService, context.Context, string) error
	}{
		{"entry <id>", "Delete an entry with its values and tags", nil, (*service.LibraryService).DeleteEntry},
		{"book <id>", "Delete a book with its entries and private attributes", nil, (*service.LibraryService).DeleteBook},
		{"booktype <id>", "Delete a book type with its books and common attributes", []string{"type"}, (*service.LibraryService).DeleteBookType},
		{"tag <id>", "Delete a tag from every book and entry", nil, (*service.LibraryService).DeleteTag},
		{"attribute <id>", "Delete an attribute definition with its values", nil, (*service.LibraryService).DeleteAttribute},
	}

	for _, k := range kinds {
		cmd.AddCommand(&cobra.Command{
			Use:     k.use,
			Aliases: k.aliases,
			Short:   k.short,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lib := do.MustInvoke[*service.LibraryService](a.injector)
				if err := k.del(lib, cmd.Context(), args[0]); err != nil {
					return a.fail(err, "delete failed")
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return err
			},
		})
	}
	return cmd
}
