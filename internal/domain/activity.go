package domain

import (
	"context"
	"strconv"
	"time"
)

// ActivityType is one of the fixed work-event categories. The table is
// seeded once at startup and read-only afterwards.
type ActivityType struct {
	Code int
	Name string
}

// Activity is a single logged driver event. TypeName is a snapshot of the
// registry name at creation time and is never refreshed afterwards.
type Activity struct {
	ID         int64
	UserID     int64
	RecordedAt time.Time
	Location   string
	PlaceName  string
	TypeCode   int
	TypeName   string
	Odometer   int64
	Country    string
	Photo      []byte // nil when no photo was uploaded
	PhotoName  string // set iff Photo is set
}

// HasPhoto reports whether the activity carries an uploaded photo.
func (a *Activity) HasPhoto() bool {
	return len(a.Photo) > 0 && a.PhotoName != ""
}

// StorageKey is the blob store key for the activity's photo.
func (a *Activity) StorageKey() string {
	return strconv.FormatInt(a.ID, 10) + "_" + a.PhotoName
}

// ActivityFilter narrows a listing. Nil time bounds and an empty code set
// mean no restriction.
type ActivityFilter struct {
	From      *time.Time
	To        *time.Time
	TypeCodes []int
}

// ActivityRepository defines persistence operations for activities.
// Activities are append-only; there is no update or delete.
type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	GetByID(ctx context.Context, id int64) (*Activity, error)
	// ListByUser returns the user's activities matching the filter,
	// ordered by recording time ascending or descending.
	ListByUser(ctx context.Context, userID int64, filter ActivityFilter, ascending bool) ([]Activity, error)
}

// ActivityTypeRepository defines persistence operations for the type registry.
type ActivityTypeRepository interface {
	Create(ctx context.Context, t *ActivityType) error
	GetByCode(ctx context.Context, code int) (*ActivityType, error)
	List(ctx context.Context) ([]ActivityType, error)
}

// FileStore abstracts flat key→bytes storage for photo files. The store is a
// derived cache; the activity row holds the authoritative bytes.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}
