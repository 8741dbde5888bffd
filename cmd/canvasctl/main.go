// Command canvasctl administers a canvas deployment: schema migrations,
// offline document validation, catalog inspection and the HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
