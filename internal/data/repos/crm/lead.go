package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

// LeadFilter narrows List. A nil AssignedUserID means all leads.
type LeadFilter struct {
	Skip           int
	Limit          int
	Status         string
	AssignedUserID *uuid.UUID
}

type LeadRepo interface {
	Create(dbc dbctx.Context, leads []*types.Lead) ([]*types.Lead, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Lead, error)
	List(dbc dbctx.Context, filter LeadFilter) ([]*types.Lead, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uint) error
	UnassignUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Count(dbc dbctx.Context) (int64, error)
	CountSince(dbc dbctx.Context, since time.Time) (int64, error)
}

type leadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo {
	repoLog := baseLog.With("repo", "LeadRepo")
	return &leadRepo{db: db, log: repoLog}
}

func (lr *leadRepo) Create(dbc dbctx.Context, leads []*types.Lead) ([]*types.Lead, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}

	if len(leads) == 0 {
		return []*types.Lead{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// GetByID returns nil without error when the lead does not exist.
func (lr *leadRepo) GetByID(dbc dbctx.Context, id uint) (*types.Lead, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Lead
	if err := transaction.WithContext(dbc.Ctx).
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

func (lr *leadRepo) List(dbc dbctx.Context, filter LeadFilter) ([]*types.Lead, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}

	q := transaction.WithContext(dbc.Ctx).Model(&types.Lead{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssignedUserID != nil {
		q = q.Where("usuario_id = ?", *filter.AssignedUserID)
	}
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var results []*types.Lead
	if err := q.Order("created_at DESC").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *leadRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Lead{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (lr *leadRepo) Delete(dbc dbctx.Context, id uint) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Lead{}).Error
}

func (lr *leadRepo) UnassignUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Lead{}).
		Where("usuario_id = ?", userID).
		Update("usuario_id", nil)
	return res.RowsAffected, res.Error
}

func (lr *leadRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).Model(&types.Lead{}).Count(&count).Error
	return count, err
}

func (lr *leadRepo) CountSince(dbc dbctx.Context, since time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = lr.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Lead{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
