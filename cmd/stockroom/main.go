// Command stockroom runs the order, position and stock service and its
// operator commands.
package main

import (
	"context"
	"os"

	"github.com/roach88/stockroom/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
