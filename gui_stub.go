//go:build console

package main

import "fmt"

// runEmbeddedUI is a stub for console-only builds
func runEmbeddedUI(config *Config) error {
	return fmt.Errorf("embedded UI not available in console build. Use -web flag for external browser mode")
}
