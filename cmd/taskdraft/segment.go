package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/taskdraft/internal/parser"
	"github.com/dgallion1/taskdraft/internal/segment"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <file>",
	Short: "Print the questions found in a task statement",
	Long: `Segment extracts the text of a task statement (txt, md, html, pdf, docx)
and splits it into questions at header lines such as "Pregunta 1", "RA04_a"
or "1.". Text before the first header is dropped. When no header is found
the whole statement is printed as a single question.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, err := loadStatement(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(seg)
		}
		printQuestions(out, seg.Questions)
		if seg.Dropped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d line(s) before the first question were dropped\n", seg.Dropped)
		}
		return nil
	},
}

func init() {
	segmentCmd.Flags().Bool("json", false, "output the segmentation as JSON")
	rootCmd.AddCommand(segmentCmd)
}

// loadStatement extracts and segments the file at path. Unstructured text
// becomes a single question, as the server does.
func loadStatement(ctx context.Context, path string) (segment.Segmentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return segment.Segmentation{}, err
	}
	defer f.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	text, err := parser.Extract(ctx, f, filepath.Base(path), parser.Options{
		PDFFallbackPdftotext: viper.GetBool("pdf_fallback_pdftotext"),
	})
	if err != nil {
		return segment.Segmentation{}, fmt.Errorf("extract %s: %w", path, err)
	}
	if text == "" {
		return segment.Segmentation{}, fmt.Errorf("%s: no text found", path)
	}

	seg := segment.Analyze(text)
	if !seg.Structured() {
		seg = segment.Segmentation{Questions: []string{text}}
	}
	return seg, nil
}

func printQuestions(w io.Writer, questions []string) {
	for i, q := range questions {
		fmt.Fprintf(w, "[%d] %s\n\n", i+1, q)
	}
}
