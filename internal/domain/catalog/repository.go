package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProgramRepository persists programs
type ProgramRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Program, error)
	FindByName(ctx context.Context, name string) (*Program, error)
	// FindActive returns active programs ordered by category then name
	FindActive(ctx context.Context) ([]*Program, error)
	CountActive(ctx context.Context) (int64, error)
	Save(ctx context.Context, p *Program) error
}
