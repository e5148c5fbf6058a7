package main

import (
	"fmt"
	"os"

	"github.com/rony4d/go-bridge-relay/cmd/relay/launcher"
)

func main() {

	// Hand the full argument list to the launcher; it runs until interrupted.
	if err := launcher.Launch(os.Args); err != nil {

		// Report the issue on stderr and exit non-zero
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

}
