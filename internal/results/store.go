package results

import (
	"context"

	"gorm.io/gorm"

	"main/pkg/conn"
)

// Store saves run results to PostgreSQL.
type Store struct {
	db *gorm.DB
}

// NewStore prepares the run_results table on the given connection.
func NewStore(client *conn.Client) (*Store, error) {
	db := client.DB()
	if err := db.AutoMigrate(&RunResult{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save inserts one run result and fills in its assigned id.
func (s *Store) Save(ctx context.Context, result *RunResult) error {
	return s.db.WithContext(ctx).Create(result).Error
}

// Recent returns the latest n results, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]RunResult, error) {
	var out []RunResult
	err := s.db.WithContext(ctx).Order("run_at desc").Limit(n).Find(&out).Error
	return out, err
}
