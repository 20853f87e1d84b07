// Command faultchar isolates the parameter-value combinations that make a
// system under test fail.
package main

import (
	"fmt"
	"os"

	"github.com/example/faultchar/cmd/faultchar/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
