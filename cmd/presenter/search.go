package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/presenterapp/presenter/internal/search"
	"github.com/presenterapp/presenter/internal/service"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		req  service.SearchRequest
		tags []string
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search entries and list them grouped by book",
		Long: `Search matches entry values against the text. By default matching ignores
case, accents and spacing; --exact matches the text as typed, ignoring
ASCII case only. Without text every entry passing the filters is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.Text = args[0]
			}
			if cmd.Flags().Changed("tag") {
				req.TagIDs = tags
			}

			svc := do.MustInvoke[*service.SearchService](a.injector)
			res, err := svc.Search(cmd.Context(), req)
			if err != nil {
				return a.fail(err, "search failed")
			}

			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), res)
			}
			return printResults(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&req.Exact, "exact", false, "Match the text as typed")
	flags.StringVar(&req.BookTypeID, "type", "", "Only entries of books of this book type")
	flags.StringVar(&req.BookID, "book", "", "Only entries of this book")
	flags.StringVar(&req.AttributeDefinitionID, "attribute", "", "Only match values of this attribute")
	flags.StringSliceVar(&tags, "tag", nil, "Only entries carrying one of these tags (repeatable)")
	flags.StringVar(&req.InBook, "in-book", "", "Search within one book, ignoring --type and --book")
	return cmd
}

func printResults(w io.Writer, res *service.Results) error {
	if res.Total == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range res.Groups {
		fmt.Fprintf(tw, "%s (%d)\n", g.Book.Name, g.Count())
		for _, es := range g.Entries {
			texts := make([]string, 0, len(es.Lines))
			for _, l := range es.Lines {
				texts = append(texts, l.Text)
			}
			fmt.Fprintf(tw, "  %s\t%s\n", es.Entry.ID, strings.Join(texts, "\t"))
		}
	}
	fmt.Fprintf(tw, "\n%d entries in %d books\n", res.Total, len(res.Groups))
	return tw.Flush()
}

func (a *app) filtersCmd() *cobra.Command {
	var sel search.Selection

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show the book types, books and attributes available as search filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := do.MustInvoke[*service.SearchService](a.injector)
			opts, err := svc.FilterOptions(cmd.Context(), sel)
			if err != nil {
				return a.fail(err, "filter options failed")
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), opts)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "Book types:")
			for _, bt := range opts.BookTypes {
				fmt.Fprintf(tw, "  %s\t%s\n", bt.ID, bt.Name)
			}
			fmt.Fprintln(tw, "Books:")
			for _, b := range opts.Books {
				fmt.Fprintf(tw, "  %s\t%s\n", b.ID, b.Name)
			}
			fmt.Fprintln(tw, "Attributes:")
			for _, d := range opts.Attributes {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.ID, d.Name, d.Type)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&sel.BookTypeID, "type", "", "Selected book type")
	cmd.Flags().StringVar(&sel.BookID, "book", "", "Selected book")
	return cmd
}
