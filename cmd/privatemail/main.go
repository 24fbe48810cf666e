package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/lambda"
	"github.com/nyah-check/privatemail/internal/config"
	"github.com/nyah-check/privatemail/internal/di"
	"github.com/nyah-check/privatemail/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var triggerType string
	if err := container.Invoke(func(cfg *config.Config) {
		triggerType = cfg.GetTrigger().Type
	}); err != nil {
		fmt.Printf("Failed to read configuration: %v\n", err)
		os.Exit(1)
	}

	// The lambda trigger hands control to the Lambda runtime; other
	// triggers run as a long-lived process
	if triggerType == "lambda" {
		if err := container.Invoke(runLambda); err != nil {
			fmt.Printf("Application error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// runLambda hands the handler to the Lambda runtime and does not return
func runLambda(logger *zap.Logger, handler *lambda.Handler) {
	defer logger.Sync()

	logger.Info("Starting Lambda runtime")
	awslambda.Start(handler.Handle)
}

// run is the main application function that gets all dependencies injected
func run(logger *zap.Logger, trigger ports.Trigger) error {
	defer logger.Sync()

	// Start the trigger
	if err := trigger.Start(); err != nil {
		logger.Fatal("Failed to start trigger", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the trigger
	if err := trigger.Stop(); err != nil {
		logger.Error("Failed to stop trigger", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
