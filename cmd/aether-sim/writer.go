package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"aether-sim/internal/config"
	"aether-sim/internal/sim"
)

// isTerminal reports whether stdout is attached to a terminal.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// newWriters sets up the decision writer chain based on flags and env vars.
// It returns the writer and a cleanup function that closes any resources.
func newWriters(cfg *config.Config, output, logFile string, greptime bool) (sim.DecisionWriter, func(), error) {
	console, err := consoleWriter(cfg, output)
	if err != nil {
		return nil, nil, err
	}
	writers := []sim.DecisionWriter{console}

	if greptime {
		gw, err := greptimeWriter()
		if err != nil {
			closeWriter(console)
			return nil, nil, err
		}
		writers = append(writers, gw)
	}
	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".summary")
		if err != nil {
			closeWriter(console)
			return nil, nil, err
		}
		writers = append(writers, fw)
	}

	if len(writers) == 1 {
		return console, func() { closeWriter(console) }, nil
	}
	mw := sim.NewMultiWriter(writers...)
	return mw, func() { mw.Close() }, nil
}

// consoleWriter chooses the STDOUT writer. auto picks color on a terminal and JSON otherwise.
func consoleWriter(cfg *config.Config, output string) (sim.DecisionWriter, error) {
	switch output {
	case "", "auto":
		if isTerminal() {
			return sim.NewColorStdoutWriter(cfg), nil
		}
		return sim.NewJSONStdoutWriter(), nil
	case "json":
		return sim.NewJSONStdoutWriter(), nil
	case "color":
		return sim.NewColorStdoutWriter(cfg), nil
	case "tui":
		return sim.NewTUIWriter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown output %q (want auto, json, color or tui)", output)
	}
}

func greptimeWriter() (*sim.GreptimeDBWriter, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("GREPTIMEDB_ENDPOINT must be set to write to GreptimeDB")
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(endpoint, database)
}

func closeWriter(w sim.DecisionWriter) {
	if c, ok := w.(io.Closer); ok {
		c.Close()
	}
}
