package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minesite-tools/water-balance/internal/balance"
	"github.com/minesite-tools/water-balance/internal/catalog"
	"github.com/minesite-tools/water-balance/internal/flowconfig"
	"github.com/minesite-tools/water-balance/internal/measurements"
	"github.com/minesite-tools/water-balance/internal/server"
	"github.com/minesite-tools/water-balance/pkg/constants"
	"github.com/minesite-tools/water-balance/pkg/output"
	"github.com/minesite-tools/water-balance/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig catalog.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get file locations
	catalogLocation := flag.String("catalog", constants.DefaultCatalogFile, "path to flow catalog template")
	flowConfigLocation := flag.String("flow-config", constants.DefaultFlowConfigFile, "path to flow enable/disable configuration")
	measurementsLocation := flag.String("measurements", "", "path to measured flow volumes (.csv, .yaml)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot calculation")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "HTTP listen address override")
	flag.Parse()

	// Load the catalog template to get the flow universe and logging configuration
	template, err := catalog.Load(*catalogLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load catalog at %s\", \"error\": \"%v\"}\n", *catalogLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(template.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	store := flowconfig.NewFileStore(*flowConfigLocation, logger)

	if *serve {
		runServer(logger, template, store, *serverConfigLocation, *address)
		return
	}

	if *measurementsLocation == "" {
		logger.Fatal("no measurement file given, use -measurements or -serve",
			zap.String("op", "main"),
		)
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := template.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Load the measured flow volumes for this run.
	measured, err := measurements.LoadFile(*measurementsLocation)
	if err != nil {
		logger.Fatal("failed to load measurements",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run the balance calculation.
	engine := balance.NewEngine(logger, template.Catalog)
	result := engine.Calculate(measured, store.Load())

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(result)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	}
}

func runServer(logger *zap.Logger, template *catalog.Template, store flowconfig.Store, configLocation, addressOverride string) {
	serverConfig, err := server.LoadConfig(configLocation)
	if err != nil {
		logger.Fatal("failed to load server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	address := serverConfig.Address
	if addressOverride != "" {
		address = addressOverride
	}

	handler := server.NewHandler(logger, template.Catalog, store, serverConfig.UploadSizeBytes(), version)

	logger.Info("starting HTTP API",
		zap.String("op", "main"),
		zap.String("address", address),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("HTTP server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
