package classify

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bonscan/models"
)

// GormDirectory backs the serving-time classifier with the relational
// schema. Upserts lean on unique indexes: create, and on a duplicate-key
// conflict fetch the row the concurrent writer won with.
type GormDirectory struct {
	DB *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db}
}

func (d *GormDirectory) GetOrCreateMerchant(ctx context.Context, name string) (models.Merchant, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	var merchant models.Merchant
	err := d.DB.WithContext(ctx).Where("normalized_name = ?", normalized).First(&merchant).Error
	if err == nil {
		return merchant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Merchant{}, err
	}
	merchant = models.Merchant{NormalizedName: normalized, DisplayName: name}
	if err := d.DB.WithContext(ctx).Create(&merchant).Error; err != nil {
		if isUniqueConstraintError(err) {
			var existing models.Merchant
			if err2 := d.DB.WithContext(ctx).Where("normalized_name = ?", normalized).First(&existing).Error; err2 == nil {
				return existing, nil
			}
		}
		return models.Merchant{}, err
	}
	return merchant, nil
}

func (d *GormDirectory) UserPreference(ctx context.Context, userID, merchantID uint) (*models.UserMerchantPreference, error) {
	var pref models.UserMerchantPreference
	err := d.DB.WithContext(ctx).Where("user_id = ? AND merchant_id = ?", userID, merchantID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (d *GormDirectory) SavePreference(ctx context.Context, pref *models.UserMerchantPreference) error {
	if pref.ID != 0 {
		return d.DB.WithContext(ctx).Save(pref).Error
	}
	if err := d.DB.WithContext(ctx).Create(pref).Error; err != nil {
		if isUniqueConstraintError(err) {
			// lost the race: apply the correction onto the winner's row
			var existing models.UserMerchantPreference
			if err2 := d.DB.WithContext(ctx).Where("user_id = ? AND merchant_id = ?", pref.UserID, pref.MerchantID).First(&existing).Error; err2 != nil {
				return err2
			}
			existing.CategoryID = pref.CategoryID
			existing.Confidence = bumpConfidence(existing.Confidence)
			*pref = existing
			return d.DB.WithContext(ctx).Save(&existing).Error
		}
		return err
	}
	return nil
}

func (d *GormDirectory) ActiveRules(ctx context.Context, txType string) ([]models.CategorizationRule, error) {
	var rules []models.CategorizationRule
	err := d.DB.WithContext(ctx).
		Joins("JOIN categories ON categories.id = categorization_rules.category_id").
		Where("categorization_rules.is_active = ? AND categories.type = ?", true, txType).
		Order("categorization_rules.priority DESC, categorization_rules.id ASC").
		Find(&rules).Error
	return rules, err
}

func (d *GormDirectory) DefaultCategory(ctx context.Context, txType string) (*models.Category, error) {
	var cat models.Category
	err := d.DB.WithContext(ctx).
		Where("is_system = ? AND type = ? AND name = ? AND user_id IS NULL", true, txType, models.DefaultCategoryName).
		First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
