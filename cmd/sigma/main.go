// Binary sigma proves and verifies sigma spending policies.
package main

import (
	"fmt"
	"os"

	sigmacli "github.com/zutxo/sigma/cmd/sigma-cli"
)

func main() {
	app := sigmacli.CLI()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sigma: %v\n", err)
		os.Exit(1)
	}
}
