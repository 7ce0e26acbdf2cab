package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-defender/internal/di"
	"github.com/mikey/email-defender/internal/session"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(p session.Params) error {
	defer p.Logger.Sync()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	stop := make(chan struct{})
	go func() {
		<-sigCh
		close(stop)
	}()

	if _, err := session.Run(p, stop); err != nil {
		return err
	}

	p.Logger.Info("Shutdown complete")
	return nil
}
