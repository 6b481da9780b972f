// Command sqlitedbm inspects and edits sqlitedbm stores from the shell.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
