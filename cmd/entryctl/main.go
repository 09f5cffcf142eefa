// entryctl is the control and debugging CLI for entrytrack.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"entrytrack/internal/config"
	"entrytrack/internal/diag"
	"entrytrack/internal/entry"
	"entrytrack/internal/logging"
	"entrytrack/internal/recent"
	"entrytrack/internal/replay"
	"entrytrack/internal/store"
)

var (
	configPath = flag.String("config", "", "path to config file")
	verbose    = flag.Bool("verbose", false, "enable per-operation trace output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)

	switch cmd {
	case "replay":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: entryctl replay <trace.jsonl>")
			os.Exit(1)
		}
		cmdReplay(flag.Arg(1))
	case "stats":
		cmdStats()
	case "init-config":
		cmdInitConfig()
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `entryctl - Control utility for entrytrack

Usage: entryctl [options] <command> [args]

Commands:
  replay <trace>  Replay a JSON-lines event trace and print transitions
  stats           Print analytics store counters and recent corrections
  init-config     Write a default config file
  help            Show this help message

Options:
  -config <path>  Path to config file (default: ~/.entrytrack/config.toml)
  -verbose        Enable per-operation trace output during replay`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(&logging.Config{
		Level:    level,
		Format:   format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)
	return log
}

func cmdReplay(tracePath string) {
	cfg := loadConfig()
	log := setupLogging(cfg)

	f, err := os.Open(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	sinks := diag.MultiSink{diag.NewLogSink(log)}
	counter := diag.NewCountingSink()
	sinks = append(sinks, counter)

	var storeSink *store.Sink
	if cfg.Diagnostics.Persist {
		s, err := store.Open(cfg.Storage.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		storeSink = store.NewSink(s, "replay-"+time.Now().Format("20060102-150405"), log)
		sinks = append(sinks, storeSink)
	}

	buf := recent.NewBuffer(cfg.Recent.Capacity)
	m := entry.NewMachine(entry.Options{
		Recorder: buf,
		Sink:     sinks,
		Verbose:  cfg.Diagnostics.Verbose || *verbose,
		Log:      log,
	})

	steps, err := replay.Run(f, m)

	for _, step := range steps {
		if step.From == step.To {
			fmt.Printf("%4d  %-20s %s\n", step.Index, step.Op, step.To)
		} else {
			fmt.Printf("%4d  %-20s %s -> %s\n", step.Index, step.Op, step.From, step.To)
		}
	}
	if storeSink != nil {
		storeSink.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Replay aborted: %v\n", err)
		os.Exit(1)
	}

	counts := counter.Counts()
	fmt.Println()
	fmt.Printf("Final state:     %s (previous %s)\n", m.StateName(), m.Previous())
	fmt.Printf("Keystrokes:      %d char, %d separator\n", counts.CharKeystrokes, counts.SeparatorKeystrokes)
	fmt.Printf("Corrections:     %d applied, %d cancelled\n", counts.AutoCorrections, counts.CorrectionsCancelled)
	if word := buf.LastWord(func(ch rune) bool { return ch == ' ' }); word != "" {
		fmt.Printf("Trailing input:  %q\n", word)
	}
}

func cmdStats() {
	cfg := loadConfig()

	if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		fmt.Println("No analytics database found")
		return
	}

	s, err := store.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	counts, err := s.Counts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading counts: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== entrytrack Statistics ===")
	fmt.Println()
	fmt.Printf("Keystrokes:  %d char, %d separator\n", counts.Char, counts.Separator)
	fmt.Printf("Cancelled:   %d\n", counts.Cancelled)
	fmt.Println()

	corrections, err := s.RecentCorrections(10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading corrections: %v\n", err)
		os.Exit(1)
	}

	if len(corrections) == 0 {
		fmt.Println("No corrections recorded")
		return
	}

	fmt.Println("Recent corrections:")
	for _, c := range corrections {
		ts := time.Unix(0, c.TimestampNs).Format(time.RFC3339)
		flag := ""
		if c.Cancelled {
			flag = " (cancelled)"
		}
		fmt.Printf("  %s  %q -> %q on %q%s\n", ts, c.Typed, c.Corrected, c.Separator, flag)
	}
}

func cmdInitConfig() {
	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Config already exists at %s\n", path)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}
