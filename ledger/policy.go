package ledger

import (
	"gorm.io/gorm"

	"highpurchase/models"
)

// ResolvePolicy returns the financing policy in effect for a shop:
// the shop's own active policy wins, then the business-wide one.
// Returns nil without error when neither exists, which only cash
// sales may proceed under.
func ResolvePolicy(tx *gorm.DB, businessID, shopID uint) (*models.FinancingPolicy, error) {
	var policy models.FinancingPolicy
	err := tx.Where("business_id = ? AND shop_id = ? AND is_active = ?", businessID, shopID, true).
		Order("id DESC").Limit(1).Find(&policy).Error
	if err != nil {
		return nil, err
	}
	if policy.ID != 0 {
		return &policy, nil
	}

	err = tx.Where("business_id = ? AND shop_id IS NULL AND is_active = ?", businessID, true).
		Order("id DESC").Limit(1).Find(&policy).Error
	if err != nil {
		return nil, err
	}
	if policy.ID != 0 {
		return &policy, nil
	}
	return nil, nil
}
