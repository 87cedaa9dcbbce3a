package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/presenterapp/presenter/internal/config"
	"github.com/presenterapp/presenter/internal/di"
	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/logger"
)

// app holds what the commands share: command-line overrides and the
// container built from them.
type app struct {
	overrides config.Overrides
	jsonOut   bool
	injector  *do.RootScope
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presenter",
		Short: "Search and present a content library",
		Long: `Presenter manages a library of books whose entries carry user-defined
attributes. It searches entries by exact or accent-insensitive text, shows
them grouped by book, and exports them as slide outlines.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.overrides.EnvFile, "env-file", config.DefaultEnvFile, "Path to .env file")
	flags.StringVar(&a.overrides.Environment, "env", "", "Environment (development, staging, production)")
	flags.StringVar(&a.overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.overrides.DataPath, "data-path", "", "Base path for library data (default ~/Presenter)")
	flags.StringVar(&a.overrides.DBPath, "db-path", "", "SQLite database file (default {data-path}/presenter.db)")
	flags.StringVar(&a.overrides.MediaPath, "media-path", "", "Media directory (default {data-path}/UserDataFiles)")
	flags.IntVar(&a.overrides.SummaryLength, "summary-length", 0, "Maximum characters per summary line (default 80)")
	flags.StringVar(&a.overrides.TemplatePath, "template", "", "YAML presentation template")
	flags.BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	cmd.AddCommand(
		a.searchCmd(),
		a.filtersCmd(),
		a.listCmd(),
		a.showCmd(),
		a.importCmd(),
		a.exportCmd(),
		a.deleteCmd(),
	)
	return cmd
}

func (a *app) open() error {
	if a.injector != nil {
		return nil
	}
	a.injector = di.NewContainer(a.overrides)
	if err := di.Bootstrap(a.injector); err != nil {
		return err
	}
	return nil
}

func (a *app) close() {
	if a.injector == nil {
		return
	}
	_ = a.injector.Shutdown()
	a.injector = nil
}

func (a *app) logger() *logger.Logger {
	return do.MustInvoke[*logger.Logger](a.injector)
}

// fail logs err in full and returns the message a user should see.
func (a *app) fail(err error, msg string) error {
	a.logger().Debug(msg, "error", err)
	return errors.New(domainerrors.UserMessage(err))
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
