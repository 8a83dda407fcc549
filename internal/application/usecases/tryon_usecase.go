package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	appservices "luastyle/internal/application/services"
	"luastyle/internal/domain/entities"
	"luastyle/internal/domain/repositories"
	"luastyle/internal/domain/services"
	"luastyle/internal/domain/valueobjects"
)

// TimeoutMessage is shown when a try-on exceeded its configured deadline.
const TimeoutMessage = "Generation took too long. Please try again."

type TryOnUseCase struct {
	sessionRepo   repositories.SessionRepository
	normalizer    *services.ImageNormalizer
	domainService *services.TryOnDomainService
	heartbeat     *appservices.Heartbeat
	timeout       time.Duration
}

func NewTryOnUseCase(
	sessionRepo repositories.SessionRepository,
	normalizer *services.ImageNormalizer,
	domainService *services.TryOnDomainService,
	heartbeat *appservices.Heartbeat,
	timeout time.Duration,
) *TryOnUseCase {
	return &TryOnUseCase{
		sessionRepo:   sessionRepo,
		normalizer:    normalizer,
		domainService: domainService,
		heartbeat:     heartbeat,
		timeout:       timeout,
	}
}

type SessionOutput struct {
	ID           entities.SessionID
	State        entities.SessionState
	Progress     float64
	Message      string
	Assets       []AssetOutput
	Accessories  []string
	ResultCount  int
	ErrorMessage string
}

type AssetOutput struct {
	Role   valueobjects.Role
	Width  int
	Height int
	Size   int
}

func (uc *TryOnUseCase) CreateSession(ctx context.Context) (*SessionOutput, error) {
	session := entities.NewSession()
	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	slog.Info("session created", "session_id", session.ID())
	return toSessionOutput(session.Snapshot()), nil
}

func (uc *TryOnUseCase) Snapshot(ctx context.Context, id entities.SessionID) (*SessionOutput, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSessionOutput(session.Snapshot()), nil
}

// Ingest normalizes data and binds it to role. Empty data is ignored. On a
// decode failure the previous image for role is kept and a
// *services.DecodeError is returned.
func (uc *TryOnUseCase) Ingest(ctx context.Context, id entities.SessionID, role valueobjects.Role, data []byte) (*SessionOutput, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return toSessionOutput(session.Snapshot()), nil
	}

	img, err := uc.normalizer.Normalize(data)
	if err != nil {
		slog.Warn("image intake rejected", "session_id", id, "role", role, "bytes", len(data), "error", err)
		return nil, err
	}

	session.SetAsset(role, img)
	slog.Info("image ingested",
		"session_id", id,
		"role", role,
		"width", img.Width(),
		"height", img.Height(),
		"bytes", img.Size(),
	)
	return toSessionOutput(session.Snapshot()), nil
}

// IngestAsync runs Ingest on its own goroutine. The channel receives the
// outcome and is then closed. Concurrent uploads for the same role resolve
// to whichever normalization finishes last.
func (uc *TryOnUseCase) IngestAsync(ctx context.Context, id entities.SessionID, role valueobjects.Role, data []byte) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := uc.Ingest(ctx, id, role, data)
		done <- err
	}()
	return done
}

func (uc *TryOnUseCase) ToggleAccessory(ctx context.Context, id entities.SessionID, label string) (*SessionOutput, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := session.ToggleAccessory(label); err != nil {
		return nil, err
	}
	return toSessionOutput(session.Snapshot()), nil
}

// StartTryOn moves the session into flight and runs the orchestrator in the
// background. It fails synchronously with entities.ErrInputsMissing when an
// image is absent. The channel yields the terminal outcome once: nil on
// success, a *services.GenerationFailure, or a context error.
func (uc *TryOnUseCase) StartTryOn(ctx context.Context, id entities.SessionID) (<-chan error, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 生成処理はHTTPリクエストより長く生きるため、キャンセルは切り離す
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if uc.timeout > 0 {
		runCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	} else {
		runCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}

	from := session.State()
	request, epoch, err := session.BeginTryOn(cancel)
	if err != nil {
		cancel()
		return nil, err
	}
	slog.Info("session transition",
		"session_id", id,
		"request_id", request.ID(),
		"from", from,
		"to", entities.StateInFlight,
	)

	ticker := uc.heartbeat.Start(runCtx,
		func(increment float64) { session.AdvanceProgress(epoch, increment) },
		func() { session.AdvanceMessage(epoch) },
	)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer cancel()

		result, err := uc.domainService.TryOn(runCtx, request)
		ticker.Stop()
		done <- uc.settle(session, epoch, result, err)
	}()

	return done, nil
}

// TryOnAndWait starts a try-on and blocks until it settles or ctx ends.
// Leaving early does not cancel the generation.
func (uc *TryOnUseCase) TryOnAndWait(ctx context.Context, id entities.SessionID) (*SessionOutput, error) {
	done, err := uc.StartTryOn(ctx, id)
	if err != nil {
		return nil, err
	}

	select {
	case err = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	snapshot, snapErr := uc.Snapshot(ctx, id)
	if snapErr != nil {
		return nil, snapErr
	}
	return snapshot, err
}

func (uc *TryOnUseCase) Reset(ctx context.Context, id entities.SessionID) (*SessionOutput, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := session.State()
	session.Reset()
	slog.Info("session transition", "session_id", id, "from", from, "to", entities.StateIdle)
	return toSessionOutput(session.Snapshot()), nil
}

func (uc *TryOnUseCase) Delete(ctx context.Context, id entities.SessionID) error {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	session.Reset()
	if err := uc.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("session deleted", "session_id", id)
	return nil
}

func (uc *TryOnUseCase) settle(session *entities.Session, epoch uint64, result *entities.TryOnResult, err error) error {
	var applied bool
	switch {
	case err == nil:
		applied = session.Complete(epoch, result)
	case errors.Is(err, context.Canceled):
		slog.Info("try-on cancelled", "session_id", session.ID())
		return err
	case errors.Is(err, context.DeadlineExceeded):
		applied = session.Fail(epoch, TimeoutMessage)
	default:
		message := err.Error()
		if failure, ok := services.IsGenerationFailure(err); ok {
			message = failure.Message
		}
		applied = session.Fail(epoch, message)
	}

	if !applied {
		slog.Info("stale try-on completion discarded", "session_id", session.ID())
		return err
	}

	state := session.State()
	if err != nil {
		slog.Warn("session transition", "session_id", session.ID(), "from", entities.StateInFlight, "to", state, "error", err)
	} else {
		slog.Info("session transition",
			"session_id", session.ID(),
			"request_id", result.RequestID(),
			"from", entities.StateInFlight,
			"to", state,
			"images", result.Len(),
		)
	}

	uc.heartbeat.ScheduleDecay(func() { session.DecayProgress(epoch) })
	return err
}

func toSessionOutput(snap entities.SessionSnapshot) *SessionOutput {
	output := &SessionOutput{
		ID:           snap.ID,
		State:        snap.State,
		Progress:     snap.Progress,
		Message:      snap.Message,
		Accessories:  snap.Accessories,
		ResultCount:  len(snap.Results),
		ErrorMessage: snap.ErrorMessage,
	}
	for _, role := range valueobjects.Roles {
		img, ok := snap.Assets[role]
		if !ok {
			continue
		}
		output.Assets = append(output.Assets, AssetOutput{
			Role:   role,
			Width:  img.Width(),
			Height: img.Height(),
			Size:   img.Size(),
		})
	}
	return output
}
