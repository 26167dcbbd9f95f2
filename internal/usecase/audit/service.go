package audit

import (
	"context"
	"fmt"
	"strings"

	"unimarket/internal/domain/audit"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

const maxUserAgentLen = 512

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Record persists one audit entry. It satisfies middleware.AuditRecorder.
func (s *Service) Record(ctx context.Context, l audit.Log) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.Action = strings.TrimSpace(l.Action)
	if len(l.UserAgent) > maxUserAgentLen {
		l.UserAgent = l.UserAgent[:maxUserAgentLen]
	}
	if err := s.repo.Insert(ctx, l); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, f audit.Filter) ([]audit.Log, error) {
	f.Action = strings.TrimSpace(f.Action)
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return out, nil
}
