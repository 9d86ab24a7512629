package catalog

import (
	"fmt"
	"strconv"

	"fitvod/api-gateway/internal/access"
	"fitvod/api-gateway/internal/apperrors"
	"fitvod/api-gateway/models"
)

// Pagination and sorting bounds for video listings.
const (
	DefaultLimit  = 50
	MaxLimit      = 100
	DefaultSort   = "created_at"
	DefaultOrder  = "desc"
	allowedLimits = "an integer between 1 and 100"
)

// RawListParams carries the untyped query-string values for a listing
// request. Empty string means the parameter was not supplied.
type RawListParams struct {
	Category  string
	Level     string
	IsPremium string
	Status    string
	Limit     string
	Offset    string
	Sort      string
	Order     string
}

// QuerySpec is a validated, bounded, sorted, paginated listing query.
type QuerySpec struct {
	Category  *models.VideoCategory
	Level     *models.VideoLevel
	IsPremium *bool
	Status    *models.VideoStatus
	Limit     int
	Offset    int
	Sort      string
	Order     string
}

// BuildQuery validates each parameter independently against its closed enum
// or numeric bound and returns a field-tagged error on the first violation.
// Invalid values are rejected, never silently coerced.
//
// The status filter is admin-only. Non-admin callers are always pinned to
// published content so draft and archived listings cannot be requested,
// mirroring the ordering of the access check.
func BuildQuery(raw RawListParams, caller access.Role) (QuerySpec, error) {
	spec := QuerySpec{
		Limit:  DefaultLimit,
		Offset: 0,
		Sort:   DefaultSort,
		Order:  DefaultOrder,
	}

	if raw.Category != "" {
		if !models.IsValidCategory(raw.Category) {
			return QuerySpec{}, apperrors.NewValidation("category", "one of: yoga, mobility, calisthenics")
		}
		c := models.VideoCategory(raw.Category)
		spec.Category = &c
	}

	if raw.Level != "" {
		if !models.IsValidLevel(raw.Level) {
			return QuerySpec{}, apperrors.NewValidation("level", "one of: beginner, intermediate, advanced")
		}
		l := models.VideoLevel(raw.Level)
		spec.Level = &l
	}

	if raw.IsPremium != "" {
		b, err := strconv.ParseBool(raw.IsPremium)
		if err != nil || (raw.IsPremium != "true" && raw.IsPremium != "false") {
			return QuerySpec{}, apperrors.NewValidation("is_premium", "one of: true, false")
		}
		spec.IsPremium = &b
	}

	if raw.Status != "" {
		if caller != access.RoleAdmin {
			return QuerySpec{}, apperrors.New(apperrors.CodeForbidden, "status filter requires admin role")
		}
		if !models.IsValidStatus(raw.Status) {
			return QuerySpec{}, apperrors.NewValidation("status", "one of: draft, published, archived")
		}
		s := models.VideoStatus(raw.Status)
		spec.Status = &s
	} else if caller != access.RoleAdmin {
		s := models.StatusPublished
		spec.Status = &s
	}

	if raw.Limit != "" {
		n, err := strconv.Atoi(raw.Limit)
		if err != nil || n < 1 || n > MaxLimit {
			return QuerySpec{}, apperrors.NewValidation("limit", allowedLimits)
		}
		spec.Limit = n
	}

	if raw.Offset != "" {
		n, err := strconv.Atoi(raw.Offset)
		if err != nil || n < 0 {
			return QuerySpec{}, apperrors.NewValidation("offset", "an integer >= 0")
		}
		spec.Offset = n
	}

	if raw.Sort != "" {
		switch raw.Sort {
		case "created_at", "title", "duration":
			spec.Sort = raw.Sort
		default:
			return QuerySpec{}, apperrors.NewValidation("sort", "one of: created_at, title, duration")
		}
	}

	if raw.Order != "" {
		switch raw.Order {
		case "asc", "desc":
			spec.Order = raw.Order
		default:
			return QuerySpec{}, apperrors.NewValidation("order", "one of: asc, desc")
		}
	}

	return spec, nil
}

// String renders the query for logging.
func (q QuerySpec) String() string {
	return fmt.Sprintf("limit=%d offset=%d sort=%s.%s", q.Limit, q.Offset, q.Sort, q.Order)
}
