// Package main is the testgen CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/batch"
	"github.com/hyperjump/testgen/internal/cli"
	"github.com/hyperjump/testgen/internal/config"
	"github.com/hyperjump/testgen/internal/export"
	"github.com/hyperjump/testgen/internal/extract"
	"github.com/hyperjump/testgen/internal/generator"
	"github.com/hyperjump/testgen/internal/llm"
	"github.com/hyperjump/testgen/internal/models"
	"github.com/hyperjump/testgen/internal/server"
	"github.com/hyperjump/testgen/internal/session"
	"github.com/hyperjump/testgen/internal/watcher"
	"github.com/hyperjump/testgen/pkg/utils"
)

var version = "dev"

// Exit codes for one-shot commands.
const (
	exitOK         = 0
	exitError      = 1
	exitEmptyTable = 2
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitError)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "generate":
		os.Exit(runGenerate(os.Args[2:], os.Stdout, os.Stderr))
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("testgen version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(exitError)
	}
}

// loadConfig resolves, loads and validates the config. debugFlag forces debug logging.
func loadConfig(path string, debugFlag bool) (*config.Config, error) {
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	cfg.Debug = cfg.Debug || debugFlag
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildGenerator wires extractor, completion client and requester. The closer releases
// the completion client.
func buildGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*generator.Generator, io.Closer, error) {
	completer, closer, err := llm.NewCompleter(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("create completion client: %w", err)
	}
	requester := llm.NewRequester(completer, cfg.LLM.Provider, llm.WithRequesterLogger(logger))
	gen := generator.New(extract.NewExtractor(), requester, generator.WithLogger(logger))
	return gen, closer, nil
}

// startWatcher starts inbox processing for cfg.Watch. It returns nil when no
// directories are configured.
func startWatcher(ctx context.Context, cfg *config.Config, gen *generator.Generator, logger *zap.Logger) (*watcher.Watcher, error) {
	if len(cfg.Watch.Directories) == 0 {
		return nil, nil
	}
	proc := batch.NewProcessor(gen, cfg.Watch.Instruction,
		batch.WithLogger(logger),
		batch.WithTimeout(cfg.LLM.Timeout))
	watchOpts := []watcher.WatcherOption{watcher.WithIgnore(batch.IsOutput)}
	if cfg.Debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	w := watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		proc.Handle,
		watchOpts...,
	)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("watching directories", zap.Strings("directories", w.Directories()))
	go w.SyncExistingFiles()
	return w, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (default: "+config.DefaultPath+", then ./"+config.LocalPath+")")
	debug := fs.Bool("debug", false, "enable debug logging")
	port := fs.Int("port", 0, "override server port")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(exitError)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(exitError)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("debug", cfg.Debug),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, closer, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generator", zap.Error(err))
	}
	defer closer.Close()

	sessions := session.NewStore(cfg.Session.Capacity, cfg.Session.TTL, session.WithLogger(logger))

	var opts []server.Option
	w, err := startWatcher(ctx, cfg, gen, logger)
	if err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	if w != nil {
		opts = append(opts, server.WithWatch(w))
	}

	srv := server.NewServer(gen, sessions, &cfg.Server, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	waitForSignal()

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	prompt := fs.String("prompt", "", "instruction sent with every document (default: watch.instruction)")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(exitError)
	}
	if fs.NArg() > 0 {
		cfg.Watch.Directories = fs.Args()
	}
	if *prompt != "" {
		cfg.Watch.Instruction = *prompt
	}
	if len(cfg.Watch.Directories) == 0 {
		fmt.Fprintln(os.Stderr, "No directories to watch: pass them as arguments or set watch.directories")
		os.Exit(exitError)
	}
	for i, dir := range cfg.Watch.Directories {
		if abs, err := filepath.Abs(dir); err == nil {
			cfg.Watch.Directories[i] = abs
		}
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(exitError)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, closer, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generator", zap.Error(err))
	}
	defer closer.Close()

	w, err := startWatcher(ctx, cfg, gen, logger)
	if err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	waitForSignal()
	logger.Info("Shutting down...")
	w.Stop()
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

// generateOptions holds parsed flags of the generate command.
type generateOptions struct {
	configPath string
	prompt     string
	format     cli.OutputFormat
	outPath    string
	fromCSV    bool
	debug      bool
	input      string
}

func parseGenerateArgs(args []string, stderr io.Writer) (*generateOptions, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file path")
	prompt := fs.String("prompt", "", "instruction for the model (required unless --from-csv)")
	output := fs.String("output", "text", "output format: text, csv, json or xlsx")
	outPath := fs.String("out", "", "write output to this file instead of stdout")
	fromCSV := fs.Bool("from-csv", false, "render a previous CSV export instead of calling the model")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: testgen generate [flags] <file>\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), `
Examples:
  testgen generate --prompt "Cover login and logout" requirements.pdf
  testgen generate --prompt "Edge cases only" --output csv --out cases.csv requirements.docx
  testgen generate --from-csv --output xlsx --out cases.xlsx test_cases.csv
`)
	}
	if err := fs.Parse(argsReorder(args)); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one input file")
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return nil, err
	}
	if format == cli.OutputXLSX && *outPath == "" {
		return nil, errors.New("xlsx output requires --out")
	}
	if !*fromCSV && *prompt == "" {
		return nil, errors.New("--prompt is required")
	}
	return &generateOptions{
		configPath: *configPath,
		prompt:     *prompt,
		format:     format,
		outPath:    *outPath,
		fromCSV:    *fromCSV,
		debug:      *debug,
		input:      fs.Arg(0),
	}, nil
}

// runGenerate implements "testgen generate" and returns the process exit code.
func runGenerate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseGenerateArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	var table models.TestCaseTable
	if opts.fromCSV {
		table, err = readCSVFile(opts.input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	} else {
		cfg, cerr := loadConfig(opts.configPath, opts.debug)
		if cerr != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", cerr)
			return exitError
		}
		table, err = generateFromFile(cfg, opts)
		if err != nil && !errors.Is(err, generator.ErrEmptyParseResult) {
			fmt.Fprintf(stderr, "Error: %s\n", generator.Classify(err).Message)
			return exitError
		}
	}

	if err := writeOutput(opts, table, stdout); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return exitError
	}
	if len(table) == 0 {
		fmt.Fprintf(stderr, "Warning: %s\n", generator.MsgEmptyParse)
		return exitEmptyTable
	}
	return exitOK
}

func generateFromFile(cfg *config.Config, opts *generateOptions) (models.TestCaseTable, error) {
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	ctx := context.Background()
	gen, closer, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	doc, err := extract.ReadDocument(opts.input)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.LLM.Timeout)
	defer cancel()
	return gen.Run(ctx, doc, opts.prompt)
}

func readCSVFile(path string) (models.TestCaseTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.ReadCSV(f)
}

func writeOutput(opts *generateOptions, table models.TestCaseTable, stdout io.Writer) error {
	if opts.outPath == "" {
		return cli.WriteTable(stdout, table, filepath.Base(opts.input), opts.format)
	}
	f, err := os.Create(opts.outPath)
	if err != nil {
		return err
	}
	if err := cli.WriteTable(f, table, filepath.Base(opts.input), opts.format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// argsReorder moves any flags (and their values) that appear after the input file
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printUsage() {
	fmt.Println(`testgen - generate test cases from requirement documents

Usage:
  testgen server [--config path] [--port n] [--debug]
                                  Start the web UI and HTTP API
  testgen generate [flags] <file> Generate test cases for one document
  testgen watch [flags] [dir...]  Write <name>.test_cases.csv for documents dropped into dirs
  testgen version                 Show version
  testgen help                    Show this help

Supported files: .txt .log .csv .pdf .pptx .docx .pcap (up to 200MB)

Environment:
  TESTGEN_API_KEY                 API key for the configured provider (required)
  GROQ_API_KEY / GEMINI_API_KEY   Provider-specific fallbacks`)
}
