package listing

import (
	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type PropertyImageRepo interface {
	ListByProperty(dbc dbctx.Context, propertyID uint) ([]*types.PropertyImage, error)
	ReplaceForProperty(dbc dbctx.Context, propertyID uint, images []*types.PropertyImage) ([]*types.PropertyImage, error)
	UpdateOrder(dbc dbctx.Context, imageID uint, order int) error
}

type propertyImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyImageRepo(db *gorm.DB, baseLog *logger.Logger) PropertyImageRepo {
	repoLog := baseLog.With("repo", "PropertyImageRepo")
	return &propertyImageRepo{db: db, log: repoLog}
}

func (r *propertyImageRepo) ListByProperty(dbc dbctx.Context, propertyID uint) ([]*types.PropertyImage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PropertyImage
	if err := transaction.WithContext(dbc.Ctx).
		Where("property_id = ?", propertyID).
		Order("ordem ASC").Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ReplaceForProperty deletes every image of propertyID and inserts images.
func (r *propertyImageRepo) ReplaceForProperty(dbc dbctx.Context, propertyID uint, images []*types.PropertyImage) ([]*types.PropertyImage, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", propertyID).Delete(&types.PropertyImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for _, img := range images {
			img.ID = 0
			img.PropertyID = propertyID
		}
		return tx.Create(&images).Error
	})
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []*types.PropertyImage{}
	}
	return images, nil
}

func (r *propertyImageRepo) UpdateOrder(dbc dbctx.Context, imageID uint, order int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PropertyImage{}).
		Where("id = ?", imageID).
		UpdateColumn("ordem", order).Error
}
