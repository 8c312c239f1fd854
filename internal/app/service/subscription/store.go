package subscription

import (
	"context"
	"errors"
	"fmt"

	models "github.com/fatflowers/washplan/internal/models"
	types "github.com/fatflowers/washplan/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary for subscription rows. Implementations
// return ErrNotFound for missing rows and wrap every other failure in
// ErrStoreUnavailable.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	Create(ctx context.Context, rec *models.Subscription) error
	Save(ctx context.Context, rec *models.Subscription) error
	SaveLog(ctx context.Context, log *models.SubscriptionLog) error
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
}

// Scan request/response, used by the super-admin list pages.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Subscription `json:"items"`
	Total int64                  `json:"total"`
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection in the Store boundary.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (g *gormStore) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var rec models.Subscription
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get subscription by user", err)
	}
	return &rec, nil
}

func (g *gormStore) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var rec models.Subscription
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get subscription by id", err)
	}
	return &rec, nil
}

func (g *gormStore) Create(ctx context.Context, rec *models.Subscription) error {
	err := g.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	if err != nil {
		return storeErr("create subscription", err)
	}
	return nil
}

func (g *gormStore) Save(ctx context.Context, rec *models.Subscription) error {
	if err := g.db.WithContext(ctx).Save(rec).Error; err != nil {
		return storeErr("save subscription", err)
	}
	return nil
}

func (g *gormStore) SaveLog(ctx context.Context, log *models.SubscriptionLog) error {
	if err := g.db.WithContext(ctx).Save(log).Error; err != nil {
		return storeErr("save subscription log", err)
	}
	return nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

func (g *gormStore) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := g.db.WithContext(ctx).Model(&models.Subscription{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, storeErr("count subscriptions", err)
	}

	var rows []*models.Subscription

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, storeErr("list subscriptions", err)
	}

	return &ScanResponse{Items: rows, Total: total}, nil
}
