package classify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"bonscan/models"
)

// Directory is the storage surface the serving-time classifier needs.
// Implementations must make GetOrCreateMerchant and preference writes
// atomic per key (the gorm implementation relies on unique indexes), and
// ActiveRules must return rules ordered by priority descending.
type Directory interface {
	GetOrCreateMerchant(ctx context.Context, name string) (models.Merchant, error)
	UserPreference(ctx context.Context, userID, merchantID uint) (*models.UserMerchantPreference, error)
	SavePreference(ctx context.Context, pref *models.UserMerchantPreference) error
	ActiveRules(ctx context.Context, txType string) ([]models.CategorizationRule, error)
	DefaultCategory(ctx context.Context, txType string) (*models.Category, error)
}

// Service resolves a category for a transaction through layered policies:
// user-specific merchant preference, merchant default, keyword rules,
// system default. First hit wins.
type Service struct {
	dir Directory
}

func NewService(dir Directory) *Service {
	return &Service{dir: dir}
}

// Categorize returns the category id for a transaction. A merchant name is
// upserted on first sight; that is normal operation, not an error path.
// The system default for the transaction type terminates the chain, so a
// missing default is a configuration error.
func (s *Service) Categorize(ctx context.Context, userID uint, merchantName, description, txType string) (uint, error) {
	if merchantName != "" {
		merchant, err := s.dir.GetOrCreateMerchant(ctx, merchantName)
		if err != nil {
			return 0, fmt.Errorf("resolve merchant %q: %w", merchantName, err)
		}
		pref, err := s.dir.UserPreference(ctx, userID, merchant.ID)
		if err != nil {
			return 0, err
		}
		if pref != nil {
			return pref.CategoryID, nil
		}
		if merchant.DefaultCategoryID != nil {
			return *merchant.DefaultCategoryID, nil
		}
	}

	text := strings.ToLower(strings.TrimSpace(merchantName + " " + description))
	rules, err := s.dir.ActiveRules(ctx, txType)
	if err != nil {
		return 0, err
	}
	for _, rule := range rules {
		if strings.Contains(text, strings.ToLower(rule.Keyword)) {
			return rule.CategoryID, nil
		}
	}

	def, err := s.dir.DefaultCategory(ctx, txType)
	if err != nil {
		return 0, err
	}
	if def == nil {
		return 0, fmt.Errorf("no default %q category configured", txType)
	}
	return def.ID, nil
}

// LearnFromCorrection records a user's category correction for a merchant.
// An existing preference moves to the new category and gains confidence; a
// new one starts at 0.5. Unknown merchant (id 0) is a no-op.
func (s *Service) LearnFromCorrection(ctx context.Context, userID, merchantID, newCategoryID uint) error {
	if merchantID == 0 {
		return nil
	}
	pref, err := s.dir.UserPreference(ctx, userID, merchantID)
	if err != nil {
		return err
	}
	if pref != nil {
		pref.CategoryID = newCategoryID
		pref.Confidence = bumpConfidence(pref.Confidence)
		return s.dir.SavePreference(ctx, pref)
	}
	return s.dir.SavePreference(ctx, &models.UserMerchantPreference{
		UserID:     userID,
		MerchantID: merchantID,
		CategoryID: newCategoryID,
		Confidence: 0.5,
	})
}

// bumpConfidence adds 0.1 at two-decimal precision, capped at 1.0.
func bumpConfidence(c float64) float64 {
	c = math.Round((c+0.1)*100) / 100
	if c > 1.0 {
		return 1.0
	}
	return c
}
