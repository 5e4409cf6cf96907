// Package main provides the entrypoint for netbox-catalyst-bridge.
package main

import (
	"os"

	"github.com/isometry/netbox-catalyst-bridge/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
