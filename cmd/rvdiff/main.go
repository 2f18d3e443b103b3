/*
 * rv32diff - Main process.
 *
 * Copyright 2026, rv32diff contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"io"
	"log/slog"
	"os"
	"os/signal"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/rv32diff/cpu"
	"github.com/rcornwell/rv32diff/internal/rvlog"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Session config file")
	optELF := getopt.StringLong("elf", 'e', "", "ELF image to load")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optTrace := getopt.BoolLong("trace", 't', "Trace every retired instruction")
	optBatch := getopt.BoolLong("batch", 'b', "Run to completion instead of starting the interactive prompt")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logw io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("creating log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logw = f
	}
	Logger = rvlog.New(logw, slog.LevelDebug, *optBatch)
	slog.SetDefault(Logger)

	Logger.Info("rv32diff started")

	if *optConfig == "" {
		Logger.Error("no session config file specified; use -c")
		os.Exit(1)
	}

	// A keyboard interrupt raises the cooperative cancellation flag;
	// the running step loop observes it and stops with partial progress
	// preserved rather than the process dying mid-instruction.
	cancel := new(cpu.CancelFlag)
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		for range sigc {
			cancel.Set()
		}
	}()

	sess, err := newSession(*optConfig, *optELF, *optTrace, cancel)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	defer sess.Close()

	if *optBatch {
		runBatch(sess)
		return
	}
	runREPL(sess)
}
