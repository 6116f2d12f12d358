// Command docsearch indexes Dropbox documents and searches their contents.
package main

import (
	"os"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driving/cli"
)

func main() {
	cli.SetBuilder(build)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
