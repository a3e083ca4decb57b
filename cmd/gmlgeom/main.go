// Command gmlgeom decodes, converts and exports GML geometry.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
