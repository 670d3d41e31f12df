package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/docr/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// processCmd represents the process command.
var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Run OCR on a document file",
	Long: `Process a single document (image or PDF) and print word-level OCR
results. Annotated page images can be written to a directory.

Supported inputs: PNG, JPEG, BMP, TIFF, GIF, PDF

Examples:
  docr process scan.png
  docr process invoice.pdf --format csv
  docr process invoice.pdf --overlay-dir out/`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read input file: %w", err)
		}

		builder := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig())
		if cfg.Verbose {
			builder = builder.WithProgress(&pipeline.WriterProgressCallback{W: cmd.ErrOrStderr()})
		}
		pl, err := builder.Build()
		if err != nil {
			return err
		}

		report, err := pl.Process(cmd.Context(), data, filepath.Base(args[0]))
		if err != nil {
			return err
		}

		if dir := cfg.Output.OverlayDir; dir != "" {
			if err := writeOverlays(report, dir); err != nil {
				return err
			}
		}

		var out string
		switch cfg.Output.Format {
		case outputFormatJSON:
			out, err = pipeline.ToJSON(report)
		case outputFormatCSV:
			out, err = pipeline.ToCSV(report)
		case outputFormatText:
			out, err = pipeline.ToPlainText(report)
		default:
			return errors.New("unknown output format: " + cfg.Output.Format)
		}
		if err != nil {
			return err
		}

		if file := cfg.Output.File; file != "" {
			return os.WriteFile(file, []byte(out+"\n"), 0o600)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// writeOverlays saves every annotated page under dir using the pipeline's
// suggested filenames.
func writeOverlays(report *pipeline.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create overlay dir: %w", err)
	}
	for _, a := range report.Artifacts {
		if err := imaging.Save(a.Image, filepath.Join(dir, a.Filename)); err != nil {
			return fmt.Errorf("write overlay for page %d: %w", a.Page, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("format", "f", "json", "output format (json, csv, text)")
	processCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	processCmd.Flags().String("overlay-dir", "", "directory for annotated page images")
	processCmd.Flags().Float64("scale", 2.0, "PDF render scale factor")

	_ = viper.BindPFlag("output.format", processCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", processCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.overlay_dir", processCmd.Flags().Lookup("overlay-dir"))
	_ = viper.BindPFlag("pipeline.scale", processCmd.Flags().Lookup("scale"))
}
