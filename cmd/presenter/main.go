// Package main provides the presenter command line: search, browse, import
// and export a content library.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

const version = "0.1.0"

func main() {
	a := &app{}
	root := a.rootCmd()
	defer a.close()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		a.close()
		os.Exit(1)
	}
}
