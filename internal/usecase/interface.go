package usecase

import (
	"context"

	"discount-audit/internal/domain"
)

// TableRepository defines the interface for loading a raw sales report.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go TableRepository
type TableRepository interface {
	LoadTable(ctx context.Context, path string) (*domain.Table, error)
}
