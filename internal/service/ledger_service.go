// internal/service/ledger_service.go
package service

import (
	"context"

	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/repository"
)

// LedgerService reads recorded batch runs.
type LedgerService struct {
	Repo repository.BatchRunRepositoryInterface
}

// RunDetails is a run with per-status item counts.
type RunDetails struct {
	*model.BatchRun
	Stats map[string]int `json:"stats"`
}

// ListRuns fetches runs with pagination
func (s *LedgerService) ListRuns(ctx context.Context, page, pageSize int) ([]*model.BatchRun, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	runs, total, err := s.Repo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return runs, pagination, nil
}

func (s *LedgerService) GetRunWithStats(ctx context.Context, id string) (*RunDetails, error) {
	run, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.Repo.GetRunStats(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RunDetails{BatchRun: run, Stats: stats}, nil
}

func (s *LedgerService) DeleteRun(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
