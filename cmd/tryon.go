package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"luastyle/cmd/tui"
	"luastyle/internal/application/usecases"
	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/valueobjects"
	"luastyle/internal/infrastructure/repositories"
)

type tryOnOptions struct {
	subject     string
	garment     string
	accessories []string
	outDir      string
	suggest     bool
	plain       bool
}

var tryOnOpts tryOnOptions

var tryOnCmd = &cobra.Command{
	Use:   "tryon",
	Short: "Dress a person photo in a garment photo",
	Example: `  luastyle tryon --subject me.jpg --garment dress.png
  luastyle tryon --subject me.jpg --garment coat.webp --accessory Scarves --accessory Watches --out looks/`,
	RunE: runTryOn,
}

func init() {
	flags := tryOnCmd.Flags()
	flags.StringVarP(&tryOnOpts.subject, "subject", "s", "", "photo of the person")
	flags.StringVarP(&tryOnOpts.garment, "garment", "g", "", "photo of the garment")
	flags.StringArrayVarP(&tryOnOpts.accessories, "accessory", "a", nil, "accessory to add, repeatable")
	flags.StringVarP(&tryOnOpts.outDir, "out", "o", ".", "directory for the generated looks")
	flags.BoolVar(&tryOnOpts.suggest, "suggest", false, "suggest matching accessories for the first look")
	flags.BoolVar(&tryOnOpts.plain, "plain", false, "print progress lines instead of the progress bar")
	_ = tryOnCmd.MarkFlagRequired("subject")
	_ = tryOnCmd.MarkFlagRequired("garment")

	rootCmd.AddCommand(tryOnCmd)
}

func runTryOn(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, err := newApp(cfg, repositories.NewCacheSessionRepository(0))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	session, err := application.tryOn.CreateSession(ctx)
	if err != nil {
		return err
	}
	id := session.ID

	if err := ingestFiles(ctx, application.tryOn, id, map[valueobjects.Role]string{
		valueobjects.RoleSubject: tryOnOpts.subject,
		valueobjects.RoleGarment: tryOnOpts.garment,
	}); err != nil {
		return err
	}

	for _, label := range tryOnOpts.accessories {
		if _, err := application.tryOn.ToggleAccessory(ctx, id, label); err != nil {
			return err
		}
	}

	done, err := application.tryOn.StartTryOn(ctx, id)
	if err != nil {
		return err
	}

	snapshot := func(ctx context.Context) (*usecases.SessionOutput, error) {
		return application.tryOn.Snapshot(ctx, id)
	}
	// 生成はリクエストから切り離されているため、中断はリセットで伝える
	cancel := func() {
		_, _ = application.tryOn.Reset(context.Background(), id)
	}

	if tryOnOpts.plain {
		err = watchPlain(ctx, cmd, snapshot, done, cancel)
	} else {
		err = tui.Run(ctx, snapshot, done, cancel)
	}
	if err != nil {
		return err
	}

	return saveLooks(ctx, cmd, application, id)
}

// ingestFiles reads and normalizes every role concurrently.
func ingestFiles(ctx context.Context, tryOn *usecases.TryOnUseCase, id entities.SessionID, files map[valueobjects.Role]string) error {
	g, gctx := errgroup.WithContext(ctx)
	for role, path := range files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s image: %w", role, err)
			}
			if err := <-tryOn.IngestAsync(gctx, id, role, data); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func watchPlain(ctx context.Context, cmd *cobra.Command, snapshot tui.SnapshotFunc, done <-chan error, cancel func()) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastMessage := ""
	for {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			cancel()
			<-done
			return tui.ErrInterrupted
		case <-ticker.C:
			out, err := snapshot(ctx)
			if err != nil {
				continue
			}
			if out.Message != lastMessage {
				lastMessage = out.Message
				fmt.Fprintf(cmd.OutOrStdout(), "[%3.0f%%] %s\n", out.Progress, out.Message)
			}
		}
	}
}

func saveLooks(ctx context.Context, cmd *cobra.Command, application *app, id entities.SessionID) error {
	session, err := application.tryOn.Snapshot(ctx, id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(tryOnOpts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i := 0; i < session.ResultCount; i++ {
		look, err := application.results.Download(ctx, id, i)
		if err != nil {
			return err
		}
		path := filepath.Join(tryOnOpts.outDir, look.FileName)
		if err := os.WriteFile(path, look.Data, 0o644); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	if !tryOnOpts.suggest || session.ResultCount == 0 {
		return nil
	}

	suggestions, err := application.results.Suggest(ctx, id, 0)
	if err != nil && !errors.Is(err, usecases.ErrResultNotFound) {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no accessory suggestions available")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Suggested accessories:")
	for _, s := range suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", s)
	}
	return nil
}
