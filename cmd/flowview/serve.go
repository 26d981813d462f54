package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/mcp"
	"github.com/vine-io/flowview/server"
	"github.com/vine-io/flowview/tui"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with viewer sessions and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.Listen, _ = cmd.Flags().GetString("listen")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a.cfg).Run(ctx)
		},
	}

	cmd.Flags().String("listen", "", "listen address (default from config)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol server on stdio",
		Long: `mcp serves the extract_bpmn_elements and summarize_bpmn tools over
standard input and output. Logs go to standard error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mcp.New(flowview.Version, a.documentOptions()...)
			if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view <file>",
		Short: "Open the interactive terminal viewer",
		Long: `view opens a full screen viewer. Keys: tab switches between the diagram
and the XML source, v and x pick one, + and - zoom, 0 resets the zoom,
e exports the source and q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(cmd, args)
			if err != nil {
				return err
			}
			return tui.Run(doc,
				tui.WithState(a.cfg.ViewState()),
				tui.WithExportDir(a.cfg.ExportDir),
			)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of flowview",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flowview version %s\n", flowview.Version)
		},
	}
}
