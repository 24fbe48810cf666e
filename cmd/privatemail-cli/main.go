package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/memory"
	"github.com/nyah-check/privatemail/internal/blacklist"
	"github.com/nyah-check/privatemail/internal/config"
	"github.com/nyah-check/privatemail/internal/core"
	"github.com/nyah-check/privatemail/internal/factory"
	"github.com/nyah-check/privatemail/internal/logging"
	"github.com/nyah-check/privatemail/internal/message"
	"github.com/nyah-check/privatemail/internal/utils"
)

var (
	// Forwarding flags
	fromEmail     = flag.String("from", "", "Verified address forwarded messages are sent from")
	toEmail       = flag.String("to", "", "Destination address forwarded messages are sent to")
	blacklistFlag = flag.String("blacklist", "", "Comma-separated list of blocked sender addresses or domains")
	subjectPrefix = flag.String("subject-prefix", "", "Prefix prepended to forwarded subjects")

	// Dispatch flags
	send      = flag.Bool("send", false, "Dispatch via SES instead of printing the rebuilt message")
	sesRegion = flag.String("ses-region", "", "AWS region for SES")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	fwd := cfg.GetForward()
	if err := fwd.Validate(); err != nil {
		logger.Fatal("Invalid forwarding configuration", zap.Error(err))
	}

	// Read email from file or stdin
	var emailReader io.Reader
	name := "stdin"
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		name = *inputFile
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	raw, err := io.ReadAll(emailReader)
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	// Parse for the summary; the pipeline parses the staged bytes itself
	msg, err := message.Parse(raw)
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	// Print message summary
	fmt.Printf("\n=== Message ===\n")
	fmt.Printf("From: %s\n", msg.DecodedHeader("From"))
	fmt.Printf("Subject: %s\n", msg.DecodedHeader("Subject"))
	fmt.Printf("Size: %d bytes\n", len(raw))
	fmt.Printf("Parts: %d\n", len(msg.Parts))

	// Stage the message the way a trigger would
	store := memory.NewFetcher(logger)
	ref := core.InboundRef{Bucket: "cli", Key: name}
	store.Put(ref, raw)

	// Create the sender
	sender, err := factory.NewSenderFactory(cfg, logger).CreateMailSender()
	if err != nil {
		logger.Fatal("Failed to create mail sender", zap.Error(err))
	}

	service := core.NewForwardService(
		store,
		sender,
		blacklist.NewEvaluator(fwd.Blacklist, logger),
		message.RewriteOptions{
			FromEmail:     fwd.FromEmail,
			ToEmail:       fwd.ToEmail,
			SubjectPrefix: fwd.SubjectPrefix,
		},
		utils.NewTextProcessor(logger),
		logger,
	)

	startTime := time.Now()
	outcome := service.Forward(context.Background(), ref)
	duration := time.Since(startTime)

	// Print outcome
	fmt.Printf("\n=== Outcome ===\n")
	fmt.Printf("State: %s\n", outcome.State)
	if outcome.State == core.StateSent {
		fmt.Printf("Recipient: %s\n", fwd.ToEmail)
	}
	if outcome.MessageID != "" {
		fmt.Printf("Message ID: %s\n", outcome.MessageID)
	}
	if outcome.Stage != "" {
		fmt.Printf("Stage: %s\n", outcome.Stage)
	}
	if outcome.Reason != "" {
		fmt.Printf("Reason: %s\n", outcome.Reason)
	}
	fmt.Printf("Processing time: %v\n", duration)

	if outcome.State == core.StateFailed {
		os.Exit(1)
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set forwarding identity
	v.Set("forward.from_email", *fromEmail)
	v.Set("forward.to_email", *toEmail)
	v.Set("forward.subject_prefix", *subjectPrefix)
	if *blacklistFlag != "" {
		v.Set("forward.blacklist", []string{*blacklistFlag})
	} else {
		v.Set("forward.blacklist", []string{})
	}

	// Set dispatch mode
	if *send {
		v.Set("sender.type", "ses")
		if *sesRegion != "" {
			v.Set("ses.region", *sesRegion)
		}
	} else {
		v.Set("sender.type", "stdout")
	}

	return config.NewFromViper(v)
}
