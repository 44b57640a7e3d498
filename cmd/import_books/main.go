// Command import_books bulk-loads a JSON book list into the catalog database.
// It is the library "import" command under its own name:
//
//	import_books --db library.db --file books.json
package main

import (
	"os"

	"library-catalog/internal/cli"
)

func main() {
	os.Exit(cli.ExecuteArgs(append([]string{"import"}, os.Args[1:]...)))
}
