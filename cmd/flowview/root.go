// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/config"
	log "github.com/vine-io/vine/lib/logger"
)

// app carries the loaded configuration to every subcommand.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "flowview",
		Short: "flowview inspects BPMN 2.0 process diagrams",
		Long: `flowview reads BPMN 2.0 XML and shows its start events, tasks, gateways
and end events as a simple vertical flow, or the XML source itself.

It renders to the terminal or HTML, serves an HTTP API with viewer sessions,
and exposes the extractor to MCP clients.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", config.DefaultPath, "configuration file")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("namespace", "", "element prefix to scan for")
	flags.Bool("auto-namespace", false, "scan with the prefix each document binds to the BPMN model namespace")
	flags.Duration("match-timeout", 0, "upper bound for a single pattern scan")

	cmd.AddCommand(
		newRenderCmd(a),
		newSummaryCmd(a),
		newExtractCmd(a),
		newExportCmd(a),
		newViewCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the config file and applies the persistent flag overrides.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("namespace") {
		cfg.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("auto-namespace") {
		cfg.AutoNamespace, _ = flags.GetBool("auto-namespace")
	}
	if flags.Changed("match-timeout") {
		cfg.MatchTimeout, _ = flags.GetDuration("match-timeout")
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	if cfg.LogLevel != "" {
		level, err := log.GetLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		if err = log.Init(log.WithLevel(level)); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	a.cfg = cfg
	return nil
}

func (a *app) newExtractor() *bpmn.Extractor {
	return bpmn.NewExtractor(a.cfg.ExtractorOptions()...)
}

func (a *app) documentOptions() []flowview.DocumentOption {
	return []flowview.DocumentOption{
		flowview.WithExtractor(a.newExtractor()),
		flowview.WithAutoNamespace(a.cfg.AutoNamespace),
	}
}

// load reads the document named by args, or standard input when args is
// empty or "-".
func (a *app) load(cmd *cobra.Command, args []string) (*flowview.Document, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		opts := append(a.documentOptions(), flowview.WithName("stdin.bpmn"))
		return flowview.NewDocument(string(data), opts...), nil
	}
	return flowview.LoadFile(args[0], a.documentOptions()...)
}
