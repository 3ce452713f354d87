package activity

import (
	"context"

	"github.com/agencyos/backend/internal/domain/activity"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service reads the activity log
type Service struct {
	repo activity.Repository
}

// NewService creates a log reader over repo
func NewService(repo activity.Repository) *Service {
	return &Service{repo: repo}
}

// Find returns matching entries newest first, at most maxLimit of them
func (s *Service) Find(ctx context.Context, q activity.Query) ([]activity.Entry, error) {
	switch {
	case q.Limit <= 0:
		q.Limit = defaultLimit
	case q.Limit > maxLimit:
		q.Limit = maxLimit
	}
	entries, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return entries, nil
}
