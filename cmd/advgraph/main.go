// Advgraph: adventure story analysis MCP server and CLI.
//
// Analyzes branching adventure stories in the .adv format: structural
// validation, dead-end pruning, ending balance, choice impact,
// replayability scoring, and flow diagrams. Runs as an MCP server over
// stdio for AI tools, or directly from the command line against .adv
// files.
//
// Usage:
//
//	advgraph serve                  # Start MCP server (stdio transport)
//	advgraph validate story.adv     # Validate an adventure file
//	advgraph analyze story.adv      # Print an analysis report
//	advgraph visualize story.adv    # Render the story flow
//	advgraph fix story.adv          # Apply automatic repairs
//	advgraph update                 # Update to the latest version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/advfile"
	"github.com/questfoundry/advgraph/internal/choices"
	"github.com/questfoundry/advgraph/internal/config"
	"github.com/questfoundry/advgraph/internal/endings"
	"github.com/questfoundry/advgraph/internal/flow"
	"github.com/questfoundry/advgraph/internal/pipeline"
	"github.com/questfoundry/advgraph/internal/pruner"
	"github.com/questfoundry/advgraph/internal/replay"
	advserver "github.com/questfoundry/advgraph/internal/server"
	"github.com/questfoundry/advgraph/internal/story"
	"github.com/questfoundry/advgraph/internal/updater"
	"github.com/questfoundry/advgraph/internal/validator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "visualize":
		err = runVisualize(os.Args[2:])
	case "fix":
		err = runFix(os.Args[2:])
	case "update":
		runUpdate()
		return
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Printf("advgraph v%s\n", advserver.Version)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML options file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	s := advserver.New(cfg, logger)

	// Background version check prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	logger.Info().Str("version", advserver.Version).Msg("starting MCP server on stdio")
	return server.ServeStdio(s)
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML options file")
	strict := fs.Bool("strict", false, "treat warnings as failures")
	verbose := fs.Bool("v", false, "print the full validation report")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: advgraph validate [flags] <file.adv>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	strictMode := *strict || cfg.StrictValidation

	adv, parseIssues, err := readAdventure(fs.Arg(0))
	if err != nil {
		return err
	}
	printParseIssues(parseIssues)

	result := validator.Validate(adv)
	passed := result.Valid
	if strictMode {
		passed = result.StrictValid()
	}

	if *verbose {
		fmt.Print(validator.Report(adv))
	} else if passed {
		fmt.Println("Validation passed")
	} else {
		fmt.Printf("Validation failed: %d errors, %d warnings\n", len(result.Errors), len(result.Warnings))
	}

	if !passed {
		os.Exit(1)
	}
	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML options file")
	reportType := fs.String("type", "quality", "report type: quality, branch, ending, choice, replay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: advgraph analyze [flags] <file.adv>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	adv, parseIssues, err := readAdventure(fs.Arg(0))
	if err != nil {
		return err
	}
	printParseIssues(parseIssues)

	caps := cfg.Caps()
	var report string
	switch *reportType {
	case "quality":
		report = pipeline.QualityReport(adv, caps)
	case "branch":
		report = pruner.Report(adv)
	case "ending":
		report = endings.Report(adv, caps)
	case "choice":
		report = choices.Report(adv, cfg.MinImpact)
	case "replay":
		report = replay.Report(adv, caps)
	default:
		return fmt.Errorf("unknown report type %q (quality, branch, ending, choice, replay)", *reportType)
	}

	fmt.Print(report)
	return nil
}

func runVisualize(args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ExitOnError)
	format := fs.String("format", "ascii", "output format: ascii, dot, mermaid, json")
	output := fs.String("o", "", "write the diagram to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: advgraph visualize [flags] <file.adv>")
	}

	adv, parseIssues, err := readAdventure(fs.Arg(0))
	if err != nil {
		return err
	}
	printParseIssues(parseIssues)

	diagram, err := flow.Export(adv, *format)
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(diagram+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing diagram: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s diagram to %s\n", *format, *output)
		return nil
	}
	fmt.Println(diagram)
	return nil
}

func runFix(args []string) error {
	fs := flag.NewFlagSet("fix", flag.ExitOnError)
	output := fs.String("o", "", "write the repaired adventure here instead of in place")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: advgraph fix [flags] <file.adv>")
	}
	inPath := fs.Arg(0)

	adv, parseIssues, err := readAdventure(inPath)
	if err != nil {
		return err
	}
	printParseIssues(parseIssues)

	fixed, applied := validator.FixCommonIssues(adv)
	result := pruner.Prune(fixed)

	for _, fix := range applied {
		fmt.Printf("  - %s\n", fix)
	}
	fmt.Printf("Pruned %d dead ends, removed %d unreachable steps\n",
		len(result.Before.DeadEnds), len(result.Before.UnreachableSteps))

	outPath := *output
	if outPath == "" {
		outPath = inPath
	}
	if err := os.WriteFile(outPath, []byte(advfile.Write(result.Optimized)), 0o644); err != nil {
		return fmt.Errorf("writing adventure: %w", err)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

// readAdventure loads and parses a .adv file. Parse issues are
// returned alongside the adventure, which is always usable.
func readAdventure(path string) (*story.Adventure, []advfile.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading adventure: %w", err)
	}
	adv, issues := advfile.Parse(string(data))
	return adv, issues, nil
}

func printParseIssues(issues []advfile.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "parse issue: %s\n", issue)
	}
}

// newLogger builds the stderr logger the server and tools share.
// Unknown level names fall back to info.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Network failures stay silent.
func checkForUpdates() {
	result := updater.CheckVersion(advserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: advgraph update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(advserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(advserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart advgraph to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `advgraph v%s - adventure story analysis

Usage:
  advgraph serve                       Start the MCP server (stdio transport)
  advgraph validate [flags] <file.adv> Validate an adventure file (exit 1 on failure)
  advgraph analyze [flags] <file.adv>  Print an analysis report
  advgraph visualize [flags] <file.adv> Render the story flow diagram
  advgraph fix [flags] <file.adv>      Apply automatic repairs and prune
  advgraph update                      Update to the latest version
  advgraph version                     Print the version

Flags:
  validate   -strict   treat warnings as failures (also via ADVGRAPH_STRICT)
             -v        print the full validation report
  analyze    -type     quality, branch, ending, choice, replay (default quality)
  visualize  -format   ascii, dot, mermaid, json (default ascii)
             -o        write the diagram to a file
  fix        -o        output path (default: in place)
  serve/validate/analyze also take -config <options.yml>

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "advgraph": {
        "command": "advgraph",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/questfoundry/advgraph
`, advserver.Version)
}
