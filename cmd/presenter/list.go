package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/presenterapp/presenter/internal/domain"
	"github.com/presenterapp/presenter/internal/service"
)

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List book types, books, tags or attributes",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "booktypes",
			Aliases: []string{"types"},
			Short:   "List book types",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				lib := do.MustInvoke[*service.LibraryService](a.injector)
				types, err := lib.ListBookTypes(cmd.Context())
				if err != nil {
					return a.fail(err, "list book types failed")
				}
				if a.jsonOut {
					return a.printJSON(cmd.OutOrStdout(), types)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, bt := range types {
					fmt.Fprintf(tw, "%s\t%s\n", bt.ID, bt.Name)
				}
				return tw.Flush()
			},
		},
		a.listBooksCmd(),
		&cobra.Command{
			Use:   "tags",
			Short: "List tags",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				lib := do.MustInvoke[*service.LibraryService](a.injector)
				tags, err := lib.ListTags(cmd.Context())
				if err != nil {
					return a.fail(err, "list tags failed")
				}
				if a.jsonOut {
					return a.printJSON(cmd.OutOrStdout(), tags)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, t := range tags {
					fmt.Fprintf(tw, "%s\t%s\n", t.ID, t.Name)
				}
				return tw.Flush()
			},
		},
		a.listAttributesCmd(),
	)
	return cmd
}

func (a *app) listBooksCmd() *cobra.Command {
	var bookTypeID string

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib := do.MustInvoke[*service.LibraryService](a.injector)
			books, err := lib.ListBooks(cmd.Context(), bookTypeID)
			if err != nil {
				return a.fail(err, "list books failed")
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), books)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, b := range books {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Name, b.BookTypeID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&bookTypeID, "type", "", "Only books of this book type")
	return cmd
}

func (a *app) listAttributesCmd() *cobra.Command {
	var bookID string

	cmd := &cobra.Command{
		Use:   "attributes",
		Short: "List attribute definitions",
		Long: `List every attribute definition, or with --book the effective attributes
of one book: its book type's common attributes followed by its own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib := do.MustInvoke[*service.LibraryService](a.injector)
			ctx := cmd.Context()

			var (
				defs []*domain.AttributeDefinition
				err  error
			)
			if bookID == "" {
				defs, err = lib.ListAttributes(ctx)
			} else {
				defs, err = lib.EffectiveAttributes(ctx, bookID)
			}
			if err != nil {
				return a.fail(err, "list attributes failed")
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), defs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range defs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Type, d.Scope)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "Show the effective attributes of this book")
	return cmd
}
