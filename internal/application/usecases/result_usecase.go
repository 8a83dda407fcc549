package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/repositories"
	"luastyle/internal/domain/valueobjects"
)

var ErrResultNotFound = errors.New("result not found")

const (
	ShareTitle = "My LuaStyle look"
	ShareText  = "Check out my new look!"
)

type ResultUseCase struct {
	sessionRepo repositories.SessionRepository
	suggester   repositories.AccessorySuggester
}

func NewResultUseCase(
	sessionRepo repositories.SessionRepository,
	suggester repositories.AccessorySuggester,
) *ResultUseCase {
	return &ResultUseCase{
		sessionRepo: sessionRepo,
		suggester:   suggester,
	}
}

type ImageOutput struct {
	FileName string
	Data     []byte
	Type     string
}

// SharePayload is what a platform share action receives.
type SharePayload struct {
	Image ImageOutput
	Title string
	Text  string
}

// Sharer hands a result to a platform share action.
type Sharer interface {
	Share(ctx context.Context, payload SharePayload) error
}

type ShareOutput struct {
	Shared bool
	// Fallback is the textual reference to copy when no sharer is available.
	Fallback string
}

// DownloadFileName is the deterministic name of the result at index.
func DownloadFileName(index int, format valueobjects.ImageFormat) string {
	return fmt.Sprintf("luastyle-look-%d%s", index+1, format.Extension())
}

func ShareFileName(format valueobjects.ImageFormat) string {
	return "look-luastyle" + format.Extension()
}

func (uc *ResultUseCase) Download(ctx context.Context, id entities.SessionID, index int) (*ImageOutput, error) {
	img, err := uc.resultImage(ctx, id, index)
	if err != nil {
		return nil, err
	}
	return &ImageOutput{
		FileName: DownloadFileName(index, img.Format()),
		Data:     img.Data(),
		Type:     img.MimeType(),
	}, nil
}

// Share passes the result to sharer. A nil sharer falls back to the image's data URI.
func (uc *ResultUseCase) Share(ctx context.Context, id entities.SessionID, index int, sharer Sharer) (*ShareOutput, error) {
	img, err := uc.resultImage(ctx, id, index)
	if err != nil {
		return nil, err
	}

	if sharer == nil {
		return &ShareOutput{Fallback: img.DataURI()}, nil
	}

	payload := SharePayload{
		Image: ImageOutput{
			FileName: ShareFileName(img.Format()),
			Data:     img.Data(),
			Type:     img.MimeType(),
		},
		Title: ShareTitle,
		Text:  ShareText,
	}
	if err := sharer.Share(ctx, payload); err != nil {
		return nil, fmt.Errorf("share failed: %w", err)
	}
	return &ShareOutput{Shared: true}, nil
}

// Suggest asks for accessories matching the result at index. Backend errors
// are logged and produce an empty list.
func (uc *ResultUseCase) Suggest(ctx context.Context, id entities.SessionID, index int) ([]string, error) {
	img, err := uc.resultImage(ctx, id, index)
	if err != nil {
		return nil, err
	}
	if uc.suggester == nil {
		return []string{}, nil
	}

	suggestions, err := uc.suggester.SuggestAccessories(ctx, img)
	if err != nil {
		slog.Warn("accessory suggestion failed", "session_id", id, "index", index, "error", err)
		return []string{}, nil
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}

func (uc *ResultUseCase) resultImage(ctx context.Context, id entities.SessionID, index int) (*valueobjects.ImageData, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := session.Result()
	if result == nil {
		return nil, ErrResultNotFound
	}
	img := result.Image(index)
	if img == nil {
		return nil, ErrResultNotFound
	}
	return img, nil
}
