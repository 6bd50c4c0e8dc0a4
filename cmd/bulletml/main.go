package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/bulletml/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands that report their own errors return an ExitError after
		// printing; anything else (flag errors, bad --format) is printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
