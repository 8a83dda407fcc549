package repositories

import (
	"context"

	"luastyle/internal/domain/entities"
)

type SessionRepository interface {
	Save(ctx context.Context, session *entities.Session) error
	FindByID(ctx context.Context, id entities.SessionID) (*entities.Session, error)
	Delete(ctx context.Context, id entities.SessionID) error
}
