package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tmvalente/drivelog/internal/domain"
)

// ActivityTypeRepository implements domain.ActivityTypeRepository using SQLite.
type ActivityTypeRepository struct {
	db *sql.DB
}

// NewActivityTypeRepository creates a new SQLite-backed ActivityTypeRepository.
func NewActivityTypeRepository(db *DB) *ActivityTypeRepository {
	return &ActivityTypeRepository{db: db.SqlDB}
}

func (r *ActivityTypeRepository) Create(ctx context.Context, t *domain.ActivityType) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_types (code, name) VALUES (?, ?)`,
		t.Code, t.Name,
	)
	if err != nil {
		return fmt.Errorf("insert activity type: %w", err)
	}
	return nil
}

func (r *ActivityTypeRepository) GetByCode(ctx context.Context, code int) (*domain.ActivityType, error) {
	t := &domain.ActivityType{}
	err := r.db.QueryRowContext(ctx,
		`SELECT code, name FROM activity_types WHERE code = ?`, code,
	).Scan(&t.Code, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query activity type: %w", err)
	}
	return t, nil
}

// List returns all activity types ordered by code ascending.
func (r *ActivityTypeRepository) List(ctx context.Context) ([]domain.ActivityType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name FROM activity_types ORDER BY code ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity types: %w", err)
	}
	defer rows.Close()

	var types []domain.ActivityType
	for rows.Next() {
		var t domain.ActivityType
		if err := rows.Scan(&t.Code, &t.Name); err != nil {
			return nil, fmt.Errorf("scan activity type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
