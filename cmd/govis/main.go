// Package main is the entry point for the govis music visualizer.
//
// Build:
//
//	go build -o build/govis ./cmd/govis
//
// Run:
//
//	./build/govis song.mp3 --lyrics song.lrc
package main

import (
	"fmt"
	"os"

	"github.com/tejashwikalptaru/govis/internal/app"
)

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "govis: %v\n", err)
		os.Exit(1)
	}
}

// run creates the application and blocks until the window is closed.
func run(config app.Config) error {
	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Shutdown()

	application.Run()
	return nil
}
