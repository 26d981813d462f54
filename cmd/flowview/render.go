package main

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/vine-io/flowview/render"
	"github.com/vine-io/flowview/view"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a BPMN document as a flow diagram or its XML source",
		Example: `  flowview render order.bpmn
  flowview render --mode source --zoom 150 order.bpmn
  cat order.bpmn | flowview render --html --class embedded > order.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			st := a.cfg.ViewState()
			if flags.Changed("mode") {
				text, _ := flags.GetString("mode")
				mode, err := view.ParseMode(text)
				if err != nil {
					return err
				}
				st.SetMode(mode)
			}
			if flags.Changed("zoom") {
				zoom, _ := flags.GetInt("zoom")
				st.SetZoom(zoom)
			}

			doc, err := a.load(cmd, args)
			if err != nil {
				return err
			}
			p := doc.Page(st)
			p.Class, _ = flags.GetString("class")

			out := cmd.OutOrStdout()
			if asHTML, _ := flags.GetBool("html"); asHTML {
				return render.HTML(out, p)
			}

			opts := []render.TextOption{render.WithOutput(out)}
			if noColor, _ := flags.GetBool("no-color"); noColor {
				opts = append(opts, render.WithColorProfile(termenv.Ascii))
			}
			_, err = fmt.Fprintln(out, render.NewTextRenderer(opts...).Render(p))
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("mode", "", "view mode: visual or source")
	flags.Int("zoom", view.DefaultZoom, fmt.Sprintf("zoom percent, %d to %d in steps of %d", view.MinZoom, view.MaxZoom, view.ZoomStep))
	flags.Bool("html", false, "write a standalone HTML page")
	flags.String("class", "", "extra class for the HTML wrapper")
	flags.Bool("no-color", false, "disable terminal colors")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Print a markdown summary of a BPMN document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(cmd, args)
			if err != nil {
				return err
			}

			md := render.Markdown(doc.Page(nil))
			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				_, err = fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}

			width, _ := cmd.Flags().GetInt("width")
			r, err := render.NewMarkdownRenderer(width)
			if err != nil {
				return err
			}
			out, err := r(md)
			if err != nil {
				return fmt.Errorf("render summary: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().Bool("raw", false, "print the markdown without terminal styling")
	cmd.Flags().Int("width", 80, "word wrap width")
	return cmd
}
