package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/models"
)

const videosTable = "videos"

// pgNoRowsCode is the PostgREST code for "no rows returned". Row-level
// security makes an invisible row indistinguishable from an absent one, and
// that collapse is intentional.
const pgNoRowsCode = "PGRST116"

// Repository is the narrow contract to the videos table.
type Repository interface {
	FetchVideoRow(ctx context.Context, id uuid.UUID) (*models.Video, error)
	FetchVideoRows(ctx context.Context, spec QuerySpec) ([]models.Video, int64, error)
	InsertVideoRow(ctx context.Context, row VideoWrite) (*models.Video, error)
	UpdateVideoRow(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Video, error)
	DeleteVideoRow(ctx context.Context, id uuid.UUID) (bool, error)
}

// VideoWrite is the insertable shape of a video record. The database
// generates id and timestamps.
type VideoWrite struct {
	Title        string               `json:"title"`
	Description  *string              `json:"description,omitempty"`
	Category     models.VideoCategory `json:"category"`
	Level        models.VideoLevel    `json:"level"`
	Duration     int                  `json:"duration"`
	VideoURL     string               `json:"video_url"`
	ThumbnailURL string               `json:"thumbnail_url"`
	IsPremium    bool                 `json:"is_premium"`
	Status       models.VideoStatus   `json:"status"`
}

// SupabaseRepository implements Repository over PostgREST.
type SupabaseRepository struct {
	db     *supa.Client
	logger *logrus.Logger
}

// NewSupabaseRepository wraps the given Supabase client.
func NewSupabaseRepository(db *supa.Client, logger *logrus.Logger) *SupabaseRepository {
	return &SupabaseRepository{db: db, logger: logger}
}

// awaitQuery runs a blocking PostgREST call on its own goroutine and
// enforces the caller's context deadline, since postgrest-go's Execute has
// no context plumbing. On expiry the query keeps running in the background
// and its result is discarded.
func awaitQuery(ctx context.Context, op string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case <-ctx.Done():
		code := apperrors.CodeNetworkError
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = apperrors.CodeTimeout
		}
		return apperrors.Wrap(code, op+" aborted", ctx.Err())
	case err := <-done:
		return err
	}
}

// FetchVideoRow returns the row for id, or apperrors.ErrNotFound when the
// backing store reports no row. The raw backend error is logged before the
// collapse so an RLS misconfiguration stays diagnosable.
func (r *SupabaseRepository) FetchVideoRow(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	err := awaitQuery(ctx, "video lookup", func() error {
		_, err := r.db.From(videosTable).
			Select("*", "exact", false).
			Eq("id", id.String()).
			Single().
			ExecuteTo(&video)
		return err
	})

	if err != nil {
		if isNoRows(err) {
			r.logger.WithFields(logrus.Fields{
				"video_id": id,
				"backend":  err.Error(),
			}).Debug("Row absent or invisible, collapsing to not found")
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapBackend(err, "video lookup failed")
	}
	return &video, nil
}

// FetchVideoRows executes a validated query spec and returns the page plus
// the exact total count.
func (r *SupabaseRepository) FetchVideoRows(ctx context.Context, spec QuerySpec) ([]models.Video, int64, error) {
	q := r.db.From(videosTable).Select("*", "exact", false)

	if spec.Category != nil {
		q = q.Eq("category", string(*spec.Category))
	}
	if spec.Level != nil {
		q = q.Eq("level", string(*spec.Level))
	}
	if spec.IsPremium != nil {
		q = q.Eq("is_premium", fmt.Sprintf("%t", *spec.IsPremium))
	}
	if spec.Status != nil {
		q = q.Eq("status", string(*spec.Status))
	}

	q = q.Order(spec.Sort, &postgrest.OrderOpts{Ascending: spec.Order == "asc"})
	q = q.Range(spec.Offset, spec.Offset+spec.Limit-1, "")

	var body []byte
	var count int64
	err := awaitQuery(ctx, "video listing", func() error {
		var execErr error
		body, count, execErr = q.Execute()
		return execErr
	})
	if err != nil {
		return nil, 0, wrapBackend(err, "video listing failed")
	}

	var videos []models.Video
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeInternal, "could not decode video rows", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, count, nil
}

// InsertVideoRow creates a new record and returns the stored representation.
func (r *SupabaseRepository) InsertVideoRow(ctx context.Context, row VideoWrite) (*models.Video, error) {
	var body []byte
	err := awaitQuery(ctx, "video insert", func() error {
		var execErr error
		body, _, execErr = r.db.From(videosTable).
			Insert(row, false, "", "representation", "").
			Execute()
		return execErr
	})
	if err != nil {
		if isConflict(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, "video already exists", err)
		}
		return nil, wrapBackend(err, "video insert failed")
	}

	created, err := decodeSingle(body)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateVideoRow applies the given column updates and returns the updated
// row, or apperrors.ErrNotFound when no row matched.
func (r *SupabaseRepository) UpdateVideoRow(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Video, error) {
	var body []byte
	var count int64
	err := awaitQuery(ctx, "video update", func() error {
		var execErr error
		body, count, execErr = r.db.From(videosTable).
			Update(updates, "representation", "exact").
			Eq("id", id.String()).
			Execute()
		return execErr
	})
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapBackend(err, "video update failed")
	}
	if count == 0 {
		return nil, apperrors.ErrNotFound
	}
	return decodeSingle(body)
}

// DeleteVideoRow removes the record; the bool reports whether a row existed.
func (r *SupabaseRepository) DeleteVideoRow(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := awaitQuery(ctx, "video delete", func() error {
		var execErr error
		_, count, execErr = r.db.From(videosTable).
			Delete("", "exact").
			Eq("id", id.String()).
			Execute()
		return execErr
	})
	if err != nil {
		return false, wrapBackend(err, "video delete failed")
	}
	return count > 0, nil
}

// Ping issues a minimal query against the videos table so the health
// endpoint can tell whether the backing store is reachable.
func (r *SupabaseRepository) Ping(ctx context.Context) error {
	err := awaitQuery(ctx, "health probe", func() error {
		_, _, execErr := r.db.From(videosTable).
			Select("id", "exact", false).
			Limit(1, "").
			Execute()
		return execErr
	})
	if err != nil {
		return wrapBackend(err, "backing store unreachable")
	}
	return nil
}

func decodeSingle(body []byte) (*models.Video, error) {
	var rows []models.Video
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "could not decode video row", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

// wrapBackend keeps an error already classified by awaitQuery (TIMEOUT,
// NETWORK_ERROR from a context abort) and wraps anything else as a backend
// failure.
func wrapBackend(err error, msg string) error {
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeNetworkError, msg, err)
}

func isNoRows(err error) bool {
	return strings.Contains(err.Error(), pgNoRowsCode)
}

func isConflict(err error) bool {
	// 23505 is Postgres unique_violation.
	return strings.Contains(err.Error(), "23505") || strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
