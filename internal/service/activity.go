package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tmvalente/drivelog/internal/domain"
)

// TimestampLayout is the display format for activity timestamps.
const TimestampLayout = "02/01/2006 - 15:04:05"

// DefaultCountry is assumed when a request omits the country field.
const DefaultCountry = "PT"

const dateLayout = "2006-01-02"

// csvHeader is the fixed export header. Consumers depend on the exact
// column names, including accents.
var csvHeader = []string{"Data/Hora", "Localização", "Nome do Local", "Tipo", "Kilometragem", "País"}

// ActivityService orchestrates activity creation, filtered listing, photo
// materialization, and CSV export. All timestamps are generated and
// interpreted in a single fixed timezone regardless of client locale.
type ActivityService struct {
	activities domain.ActivityRepository
	types      domain.ActivityTypeRepository
	files      domain.FileStore
	loc        *time.Location
}

// NewActivityService creates a new ActivityService using loc as the fixed
// timezone for timestamping and date-range filtering.
func NewActivityService(activities domain.ActivityRepository, types domain.ActivityTypeRepository, files domain.FileStore, loc *time.Location) *ActivityService {
	return &ActivityService{
		activities: activities,
		types:      types,
		files:      files,
		loc:        loc,
	}
}

// CreateActivityInput carries the fields of a new activity. PhotoData holds
// the raw upload; it is normalized before persisting.
type CreateActivityInput struct {
	Location      string
	PlaceName     string
	TypeCode      int
	Odometer      int64
	Country       string
	PhotoData     []byte
	PhotoFilename string
}

// Create validates and persists a new activity for the user. The timestamp
// is stamped server-side in the fixed timezone, and the resolved type name
// is copied onto the row so later registry edits never rewrite history.
// A failed photo normalization aborts the whole call; nothing is persisted.
func (s *ActivityService) Create(ctx context.Context, user *domain.User, in CreateActivityInput) (*domain.Activity, error) {
	t, err := s.types.GetByCode(ctx, in.TypeCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidActivityType
		}
		return nil, fmt.Errorf("get activity type: %w", err)
	}

	country := in.Country
	if country == "" {
		country = DefaultCountry
	}

	activity := &domain.Activity{
		UserID:     user.ID,
		RecordedAt: time.Now().In(s.loc),
		Location:   in.Location,
		PlaceName:  in.PlaceName,
		TypeCode:   t.Code,
		TypeName:   t.Name,
		Odometer:   in.Odometer,
		Country:    country,
	}

	if len(in.PhotoData) > 0 {
		photo, name, err := NormalizePhoto(in.PhotoData, in.PhotoFilename)
		if err != nil {
			return nil, err
		}
		activity.Photo = photo
		activity.PhotoName = name
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	return activity, nil
}

// ActivityView is a listing entry. RecordedAt is pre-formatted in the fixed
// timezone; PhotoURL is empty when the activity has no photo.
type ActivityView struct {
	ID         int64
	RecordedAt string
	Location   string
	PlaceName  string
	TypeCode   int
	TypeName   string
	Odometer   int64
	Country    string
	PhotoURL   string
}

// List returns the user's activities ascending by timestamp. dateFrom and
// dateTo are optional YYYY-MM-DD calendar dates interpreted in the fixed
// timezone; dateTo is inclusive of its whole day. typeCodes is an optional
// comma-separated code list where non-numeric tokens are dropped silently.
// Photos are lazily materialized into the file store on first listing.
func (s *ActivityService) List(ctx context.Context, userID int64, dateFrom, dateTo, typeCodes string) ([]ActivityView, error) {
	filter := domain.ActivityFilter{TypeCodes: parseTypeCodes(typeCodes)}

	if dateFrom != "" {
		day, err := time.ParseInLocation(dateLayout, dateFrom, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDateFormat, dateFrom)
		}
		filter.From = &day
	}
	if dateTo != "" {
		day, err := time.ParseInLocation(dateLayout, dateTo, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDateFormat, dateTo)
		}
		// Last second of the calendar day in the fixed zone. Built with
		// time.Date rather than adding 24h so DST transition days (23 or
		// 25 wall-clock hours) still cover the whole day.
		end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, s.loc)
		filter.To = &end
	}

	activities, err := s.activities.ListByUser(ctx, userID, filter, true)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	views := make([]ActivityView, 0, len(activities))
	for i := range activities {
		a := &activities[i]
		view := ActivityView{
			ID:         a.ID,
			RecordedAt: a.RecordedAt.In(s.loc).Format(TimestampLayout),
			Location:   a.Location,
			PlaceName:  a.PlaceName,
			TypeCode:   a.TypeCode,
			TypeName:   a.TypeName,
			Odometer:   a.Odometer,
			Country:    a.Country,
		}
		if a.HasPhoto() {
			url, err := s.materializePhoto(ctx, a)
			if err != nil {
				return nil, err
			}
			view.PhotoURL = url
		}
		views = append(views, view)
	}
	return views, nil
}

// ExportCSV renders all of the user's activities, newest first, as a UTF-8
// CSV document with a fixed header.
func (s *ActivityService) ExportCSV(ctx context.Context, userID int64) ([]byte, error) {
	activities, err := s.activities.ListByUser(ctx, userID, domain.ActivityFilter{}, false)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range activities {
		a := &activities[i]
		record := []string{
			a.RecordedAt.In(s.loc).Format(TimestampLayout),
			a.Location,
			a.PlaceName,
			a.TypeName,
			strconv.FormatInt(a.Odometer, 10),
			a.Country,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadPhoto returns photo bytes for a blob key. On a file-store miss it
// re-materializes the file from the owning activity row before giving up;
// the directory is a reconstructible cache, not the source of truth.
func (s *ActivityService) LoadPhoto(ctx context.Context, key string) ([]byte, error) {
	data, err := s.files.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get photo: %w", err)
	}

	id, ok := parseStorageKey(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if !activity.HasPhoto() || activity.StorageKey() != key {
		return nil, domain.ErrNotFound
	}

	if err := s.files.Save(ctx, key, activity.Photo); err != nil {
		return nil, fmt.Errorf("materialize photo: %w", err)
	}
	return activity.Photo, nil
}

// materializePhoto writes the activity's photo to the file store if absent
// and returns its serving URL. The write is idempotent; racing listings
// write identical bytes to the same key.
func (s *ActivityService) materializePhoto(ctx context.Context, a *domain.Activity) (string, error) {
	key := a.StorageKey()
	exists, err := s.files.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check photo %s: %w", key, err)
	}
	if !exists {
		if err := s.files.Save(ctx, key, a.Photo); err != nil {
			return "", fmt.Errorf("materialize photo %s: %w", key, err)
		}
	}
	return "/uploads/" + key, nil
}

// parseTypeCodes splits a comma-separated code list, dropping tokens that
// are not plain unsigned digits. Signed forms like "-1" or "+2" are dropped
// too, not parsed.
func parseTypeCodes(s string) []int {
	if s == "" {
		return nil
	}
	var codes []int
	for _, token := range strings.Split(s, ",") {
		if !isDigits(token) {
			continue
		}
		code, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseStorageKey extracts the activity ID from a "{id}_{photo_name}" key.
func parseStorageKey(key string) (int64, bool) {
	idx := strings.Index(key, "_")
	if idx <= 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(key[:idx], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
