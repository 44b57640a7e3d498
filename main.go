package main

import (
	"os"

	"library-catalog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
