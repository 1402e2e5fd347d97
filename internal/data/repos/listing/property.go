package listing

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type PropertyFilter struct {
	Search   string
	Status   string
	Type     string
	Featured *bool
	Skip     int
	Limit    int
}

// PropertyViews is a (title, views) pair for ranking.
type PropertyViews struct {
	ID    uint   `json:"id"`
	Title string `json:"titulo"`
	Views int    `json:"views"`
}

type PropertyRepo interface {
	Create(dbc dbctx.Context, properties []*types.Property) ([]*types.Property, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Property, error)
	List(dbc dbctx.Context, filter PropertyFilter) ([]*types.Property, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uint) error
	IncrementViews(dbc dbctx.Context, id uint) error
	CountByStatus(dbc dbctx.Context, status string) (int64, error)
	SumViews(dbc dbctx.Context) (int64, error)
	TopViewed(dbc dbctx.Context, n int) ([]PropertyViews, error)
}

type propertyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyRepo(db *gorm.DB, baseLog *logger.Logger) PropertyRepo {
	repoLog := baseLog.With("repo", "PropertyRepo")
	return &propertyRepo{db: db, log: repoLog}
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("ordem ASC").Order("id ASC")
}

// Create inserts properties together with their Images.
func (pr *propertyRepo) Create(dbc dbctx.Context, properties []*types.Property) ([]*types.Property, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(properties) == 0 {
		return []*types.Property{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetByID returns nil without error when the property does not exist.
func (pr *propertyRepo) GetByID(dbc dbctx.Context, id uint) (*types.Property, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Property
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Images", preloadImages).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *propertyRepo) List(dbc dbctx.Context, filter PropertyFilter) ([]*types.Property, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Property{})
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(titulo) LIKE ? OR LOWER(localizacao) LIKE ?", like, like)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("LOWER(tipo) = ?", strings.ToLower(filter.Type))
	}
	if filter.Featured != nil {
		if *filter.Featured {
			q = q.Where("is_destaque = ?", 1)
		} else {
			q = q.Where("is_destaque = ?", 0)
		}
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var results []*types.Property
	if err := q.Preload("Images", preloadImages).
		Order("created_at DESC").Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *propertyRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Property{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the property with its images. View history is kept so
// analytics totals do not shrink.
func (pr *propertyRepo) Delete(dbc dbctx.Context, id uint) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&types.PropertyImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&types.Property{}).Error
	})
}

func (pr *propertyRepo) IncrementViews(dbc dbctx.Context, id uint) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Property{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

func (pr *propertyRepo) CountByStatus(dbc dbctx.Context, status string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Property{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (pr *propertyRepo) SumViews(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	var total int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Property{}).
		Select("COALESCE(SUM(views_count), 0)").
		Scan(&total).Error
	return total, err
}

func (pr *propertyRepo) TopViewed(dbc dbctx.Context, n int) ([]PropertyViews, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	if n <= 0 {
		n = 5
	}
	var rows []PropertyViews
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Property{}).
		Select("id, titulo AS title, views_count AS views").
		Order("views_count DESC").Order("id ASC").
		Limit(n).
		Scan(&rows).Error
	return rows, err
}
