package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cogniverse/internal/pkg/fileproc"
	"cogniverse/internal/server"
)

var extractCmd = &cobra.Command{
	Use:   "extract <path>",
	Short: "Extract text and metadata from a local file",
	Long:  `Run the file processing pipeline on a local file and print the result as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.Bool("full", false, "print the full extracted content instead of the preview only")
	flags.Bool("ocr", true, "run OCR on images when tesseract is available")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags(), map[string]string{"files.ocr_enabled": "ocr"})
	if err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	processor := server.NewProcessor(&cfg.Files)
	if err := processor.CheckSize(info.Name(), info.Size()); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	up := fileproc.Upload{Name: filepath.Base(path), Data: data}
	up.MediaType = fileproc.ResolveMediaType(up.Name, "", data)

	res, err := processor.Process(cmd.Context(), up)
	if err != nil {
		return err
	}

	full, _ := cmd.Flags().GetBool("full")
	if !full {
		res.Content = ""
	}
	res.Attachment = ""

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Name      string `json:"name"`
		MediaType string `json:"media_type"`
		Size      string `json:"size"`
		*fileproc.Result
	}{
		Name:      up.Name,
		MediaType: up.MediaType,
		Size:      fileproc.HumanSize(info.Size()),
		Result:    res,
	})
}
