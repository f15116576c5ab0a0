package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	// FindByIDs returns the users among ids that exist
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.User, error)

	// ListActive returns every active user
	ListActive(ctx context.Context) ([]*entities.User, error)
}
