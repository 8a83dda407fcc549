package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	domainservices "luastyle/internal/domain/services"
)

var validExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize a directory of images into JPEG data URIs",
	Long: `normalize runs every image in --dir through the same normalizer used for
uploads and writes one <name>.txt data URI per image into --out.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().String("dir", "images", "directory of source images")
	normalizeCmd.Flags().String("out", "encoded", "directory for the data URI files")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	out, _ := cmd.Flags().GetString("out")

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}

	normalizer := domainservices.NewImageNormalizer(cfg.MaxImageSide, cfg.JPEGQuality, cfg.MaxInputPixels)

	written := 0
	for _, file := range files {
		if file.IsDir() || !slices.Contains(validExtensions, strings.ToLower(filepath.Ext(file.Name()))) {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return err
		}
		img, err := normalizer.Normalize(raw)
		if err != nil {
			// 読めない画像はスキップして続行する
			slog.Warn("skipping image", "file", file.Name(), "error", err)
			continue
		}

		// ファイル名の拡張子を除いたものをファイル名として保存
		name := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())) + ".txt"
		if err := os.WriteFile(filepath.Join(out, name), []byte(img.DataURI()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "normalized %d image(s) into %s\n", written, out)
	return nil
}
