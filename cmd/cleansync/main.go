// Command cleansync is a record-keeping tool for recurring cleaning jobs
// tied to named areas, with a local-first cache of the remote record store
// and period-based reporting.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
