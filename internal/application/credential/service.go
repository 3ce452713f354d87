// Package credential reveals the secrets sealed into credential records.
package credential

import (
	"context"
	"fmt"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/domain/ops"
	"github.com/agencyos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Source selects credentials by id
type Source interface {
	Get(ctx context.Context, id string) (*records.Detail[ops.Credential], error)
}

// Secret is a revealed credential
type Secret struct {
	ID       string `json:"id"`
	Service  string `json:"service"`
	Username string `json:"username"`
	URL      string `json:"url,omitempty"`
	Secret   string `json:"secret"`
}

// Service opens sealed secrets. Every reveal is logged with its actor.
type Service struct {
	credentials Source
	sealer      ops.Sealer
	logger      *zap.Logger
}

// NewService creates a new credential Service
func NewService(credentials Source, sealer ops.Sealer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		credentials: credentials,
		sealer:      sealer,
		logger:      logger.With(zap.String("service", "credential")),
	}
}

// Reveal returns the clear secret of the credential with the given id
func (s *Service) Reveal(ctx context.Context, id string) (*Secret, error) {
	detail, err := s.credentials.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := detail.Record
	if !c.HasSecret() {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "credential "+id+" has no secret")
	}
	if s.sealer == nil {
		return nil, shared.NewDomainError(shared.ErrInvalidState.Code, "no vault key configured")
	}
	plain, err := s.sealer.Open(c.SealedSecret)
	if err != nil {
		s.logger.Error("credential secret failed to open", zap.String("credential_id", id), zap.Error(err))
		return nil, fmt.Errorf("open credential %s: %w", id, err)
	}

	s.logger.Info("credential secret revealed",
		zap.String("credential_id", id),
		zap.String("service", c.Service),
		zap.String("actor", records.ActorFrom(ctx)))

	return &Secret{
		ID:       c.ID,
		Service:  c.Service,
		Username: c.Username,
		URL:      c.URL,
		Secret:   plain,
	}, nil
}
