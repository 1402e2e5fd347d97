package listing

import (
	"time"

	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type PropertyViewRepo interface {
	Create(dbc dbctx.Context, views []*types.PropertyView) ([]*types.PropertyView, error)
	Count(dbc dbctx.Context) (int64, error)
	ListSince(dbc dbctx.Context, since time.Time) ([]time.Time, error)
}

type propertyViewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyViewRepo(db *gorm.DB, baseLog *logger.Logger) PropertyViewRepo {
	repoLog := baseLog.With("repo", "PropertyViewRepo")
	return &propertyViewRepo{db: db, log: repoLog}
}

func (r *propertyViewRepo) Create(dbc dbctx.Context, views []*types.PropertyView) ([]*types.PropertyView, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(views) == 0 {
		return []*types.PropertyView{}, nil
	}
	now := time.Now()
	for _, v := range views {
		if v.ViewedAt.IsZero() {
			v.ViewedAt = now
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *propertyViewRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).Model(&types.PropertyView{}).Count(&count).Error
	return count, err
}

// ListSince returns the timestamps of views at or after since.
// Day bucketing happens in the caller so it is dialect independent.
func (r *propertyViewRepo) ListSince(dbc dbctx.Context, since time.Time) ([]time.Time, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.PropertyView
	if err := transaction.WithContext(dbc.Ctx).
		Select("viewed_at").
		Where("viewed_at >= ?", since).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ViewedAt)
	}
	return out, nil
}
