package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/tempo-go-api/internal/dto"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/repository"
)

// RosterService exposes the students bonded to a professor.
type RosterService interface {
	ListStudents(ctx context.Context, professorID uint) ([]dto.RosterEntryResponse, error)
	CanView(ctx context.Context, actor Actor, studentID uint) error
}

type rosterService struct {
	bonds  repository.BondRepository
	logger zerolog.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(bonds repository.BondRepository, logger zerolog.Logger) RosterService {
	return &rosterService{
		bonds:  bonds,
		logger: logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) ListStudents(ctx context.Context, professorID uint) ([]dto.RosterEntryResponse, error) {
	bonds, err := s.bonds.ListActive(ctx, professorID)
	if err != nil {
		return nil, fmt.Errorf("list bonds: %w", err)
	}

	seen := make(map[uint]struct{}, len(bonds))
	entries := make([]dto.RosterEntryResponse, 0, len(bonds))
	for _, bond := range bonds {
		if _, ok := seen[bond.StudentID]; ok {
			continue
		}
		seen[bond.StudentID] = struct{}{}
		entries = append(entries, dto.RosterEntryResponse{
			StudentID:    bond.StudentID,
			Name:         bond.Student.Name,
			Email:        bond.Student.Email,
			InstrumentID: bond.InstrumentID,
		})
	}

	return entries, nil
}

// CanView allows students to read their own progress and professors to read bonded students.
func (s *rosterService) CanView(ctx context.Context, actor Actor, studentID uint) error {
	switch actor.Role {
	case models.RoleStudent:
		if actor.ID == studentID {
			return nil
		}
	case models.RoleProfessor:
		active, err := s.bonds.IsActive(ctx, actor.ID, studentID)
		if err != nil {
			return fmt.Errorf("check bond: %w", err)
		}
		if active {
			return nil
		}
	}

	s.logger.Debug().Uint("actor_id", actor.ID).Uint("student_id", studentID).Msg("progress access denied")
	return ErrStudentNotBonded
}
