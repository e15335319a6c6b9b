// Command swrcache inspects and busts entries written by swrcache, and runs
// a small demo operation against a configured store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
