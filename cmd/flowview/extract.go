package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/vine-io/flowview"
	log "github.com/vine-io/vine/lib/logger"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Print the recognised elements of BPMN documents as JSON",
		Long: `extract prints the start events, tasks, gateways and end events of each
document, in document order per category, with counts and definitions metadata.

Several files, or a directory of .bpmn/.bpmn2/.xml files, are read
concurrently and printed as a JSON array. Files that cannot be read are
reported and skipped.`,
		Example: `  flowview extract order.bpmn
  flowview extract --query '[.elements[] | select(.type == "task") | .name]' order.bpmn
  flowview extract --workers 4 processes/*.bpmn`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			expr, _ := flags.GetString("query")
			pretty, _ := flags.GetBool("pretty")

			paths, batch, err := expandPaths(args)
			if err != nil {
				return err
			}

			var (
				docs    []*flowview.Document
				loadErr error
			)
			if !batch {
				doc, err := a.load(cmd, args)
				if err != nil {
					return err
				}
				docs = []*flowview.Document{doc}
			} else {
				workers := a.cfg.Workers
				if flags.Changed("workers") {
					workers, _ = flags.GetInt("workers")
				}
				docs, loadErr = flowview.LoadAll(cmd.Context(), paths, workers, a.documentOptions()...)
				if loadErr != nil {
					log.Warnf("some documents were skipped: %v", loadErr)
				}
			}

			out := make([]any, 0, len(docs))
			for _, doc := range docs {
				if expr == "" {
					out = append(out, doc.View())
					continue
				}
				values, err := flowview.Query(cmd.Context(), doc, expr)
				if err != nil {
					return err
				}
				out = append(out, values...)
			}

			var v any = out
			if !batch && expr == "" {
				v = out[0]
			}
			if err := writeJSON(cmd, v, pretty); err != nil {
				return err
			}
			if loadErr != nil && len(docs) == 0 {
				return errors.New("no document could be read")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("query", "q", "", "jq expression applied to each document")
	flags.Bool("pretty", false, "indent the JSON output")
	flags.Int("workers", flowview.DefaultWorkers, "concurrent readers when several files are given")
	return cmd
}

// expandPaths replaces each directory in args by the BPMN files it holds.
// batch reports whether the result names more than one document source.
func expandPaths(args []string) ([]string, bool, error) {
	paths := make([]string, 0, len(args))
	batch := false
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, false, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && flowview.IsBPMNFile(entry.Name()) {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
		batch = true
	}
	return paths, batch || len(paths) > 1, nil
}

func writeJSON(cmd *cobra.Command, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the XML source of a BPMN document to a file, unchanged",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(cmd, args)
			if err != nil {
				return err
			}

			dir := a.cfg.ExportDir
			if cmd.Flags().Changed("dir") {
				dir, _ = cmd.Flags().GetString("dir")
			}
			name, _ := cmd.Flags().GetString("name")

			path, err := doc.Export(dir, name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().String("dir", ".", "target directory")
	cmd.Flags().String("name", "", "file name (default: generated Diagram_xxxxxx.bpmn)")
	return cmd
}
