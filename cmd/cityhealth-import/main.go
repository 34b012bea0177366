// Command cityhealth-import loads provider records into the directory store.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
