package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tmvalente/drivelog/internal/domain"
)

// ActivityRepository implements domain.ActivityRepository using SQLite.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new SQLite-backed ActivityRepository.
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db.SqlDB}
}

const activityColumns = `id, user_id, recorded_at, location, place_name,
	type_code, type_name, odometer, country, photo, photo_name`

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	var photo any
	var photoName any
	if a.HasPhoto() {
		photo = a.Photo
		photoName = a.PhotoName
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (user_id, recorded_at, location, place_name,
		 type_code, type_name, odometer, country, photo, photo_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.RecordedAt.UTC(), a.Location, a.PlaceName,
		a.TypeCode, a.TypeName, a.Odometer, a.Country, photo, photoName,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	a.ID = id
	return nil
}

func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id,
	)
	a, err := scanActivity(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query activity by id: %w", err)
	}
	return a, nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID int64, filter domain.ActivityFilter, ascending bool) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id = ?`
	args := []any{userID}

	if filter.From != nil {
		query += ` AND recorded_at >= ?`
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		query += ` AND recorded_at <= ?`
		args = append(args, filter.To.UTC())
	}
	if len(filter.TypeCodes) > 0 {
		placeholders := strings.Repeat("?,", len(filter.TypeCodes))
		query += ` AND type_code IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, code := range filter.TypeCodes {
			args = append(args, code)
		}
	}

	if ascending {
		query += ` ORDER BY recorded_at ASC`
	} else {
		query += ` ORDER BY recorded_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func scanActivity(scan func(dest ...any) error) (*domain.Activity, error) {
	a := &domain.Activity{}
	var photoName sql.NullString
	err := scan(&a.ID, &a.UserID, &a.RecordedAt, &a.Location, &a.PlaceName,
		&a.TypeCode, &a.TypeName, &a.Odometer, &a.Country, &a.Photo, &photoName)
	if err != nil {
		return nil, err
	}
	a.PhotoName = photoName.String
	return a, nil
}
