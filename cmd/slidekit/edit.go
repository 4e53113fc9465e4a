package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tsawler/slidekit"
)

func (a *app) populateCommand() *cobra.Command {
	var (
		title        string
		out          string
		keepTemplate bool
	)
	cmd := &cobra.Command{
		Use:   "populate <template.pptx> <content-file|->",
		Short: "Spread text over copies of the template slide",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args[1])
			if err != nil {
				return err
			}
			ed, err := slidekit.Open(args[0], a.editorOptions()...)
			if err != nil {
				return err
			}
			slides, err := ed.Populate(content, title)
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0]
			}
			if err := ed.Save(out, !keepTemplate); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d slides to %s\n", len(slides), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", "title of every added slide")
	f.StringVarP(&out, "out", "o", "", "output file (default: overwrite the template file)")
	f.BoolVar(&keepTemplate, "keep-template", false, "keep the template slide in the output")
	f.Int("template-slide", 1, "0-based index of the template slide")
	f.Int("max-chars", 2250, "maximum characters per slide")
	_ = a.v.BindPFlag("editor.template_slide", f.Lookup("template-slide"))
	_ = a.v.BindPFlag("editor.max_content_chars", f.Lookup("max-chars"))
	return cmd
}

func readContent(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}

func (a *app) copyCommand() *cobra.Command {
	var slides []int
	cmd := &cobra.Command{
		Use:   "copy <source.pptx> <destination.pptx>",
		Short: "Append slides of one presentation to another",
		Long:  "Copies the selected slides (all by default) to the end of the destination, creating it when missing.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := slidekit.Open(args[0], a.editorOptions()...)
			if err != nil {
				return err
			}
			if err := slidekit.CopyAcrossDocuments(src, args[1], slides...); err != nil {
				return err
			}
			n := len(slides)
			if n == 0 {
				n = src.SlideCount()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d slides to %s\n", n, args[1])
			return nil
		},
	}
	cmd.Flags().IntSliceVarP(&slides, "slides", "s", nil, "0-based slide indices to copy")
	return cmd
}

func (a *app) normalizeCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "normalize <file.pptx>",
		Short: "Flatten diagrams and rewrite embedded objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := append(a.editorOptions(), slidekit.WithoutNormalization())
			ed, err := slidekit.Open(args[0], opts...)
			if err != nil {
				return err
			}
			res, err := ed.Normalize()
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0]
			}
			if err := ed.Save(out, false); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "diagrams: %d, photos: %d, objects: %d\n", res.Diagrams, res.Photos, res.Objects)
			if warnings := ed.Warnings(); len(warnings) > 0 {
				fmt.Fprintln(w, slidekit.FormatWarnings(warnings))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: overwrite the input)")
	return cmd
}
