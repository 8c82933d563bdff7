package catalog

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/google/uuid"
)

// ProgramService serves the public program catalog
type ProgramService struct {
	programs catalog.ProgramRepository
}

func NewProgramService(programs catalog.ProgramRepository) *ProgramService {
	return &ProgramService{programs: programs}
}

// ListActive returns active programs ordered by category then name
func (s *ProgramService) ListActive(ctx context.Context) ([]ProgramResponse, error) {
	programs, err := s.programs.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToProgramResponses(programs), nil
}

// ListByCategory returns active programs grouped online, offline, group, branch
func (s *ProgramService) ListByCategory(ctx context.Context) ([]CategoryGroup, error) {
	programs, err := s.programs.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(programs), nil
}

// Get returns a program by id, active or not
func (s *ProgramService) Get(ctx context.Context, id uuid.UUID) (*ProgramResponse, error) {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProgramResponse(program)
	return &resp, nil
}
