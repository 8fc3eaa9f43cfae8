package contract

import (
	"context"

	"multichat-be/internal/entity"
	"multichat-be/internal/repository/specification"
)

type PreferenceRepository interface {
	// Save inserts or overwrites the preference row for its user.
	Save(ctx context.Context, preference *entity.UserPreference) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserPreference, error)
}
