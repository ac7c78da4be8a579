package main

import (
	"fmt"
	"os"

	"github.com/kudosx/kudosx/cmd/kudosx/cmd"
	kerrors "github.com/kudosx/kudosx/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(kerrors.ExitCode(err))
	}
}
