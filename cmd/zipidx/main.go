// Command zipidx builds, inspects, and verifies sidecar index files for
// zip archives.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
