package ledger

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"highpurchase/models"
)

// nextPurchaseNumber advances the customer's counter under a row lock
// and formats the purchase number. Two first-time purchases for the
// same customer can race on the insert; the resulting unique violation
// is retried by the caller's transaction loop.
func nextPurchaseNumber(tx *gorm.DB, customerID uint) (string, uint, error) {
	var seq models.CustomerSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).Find(&seq).Error
	if err != nil {
		return "", 0, err
	}
	if seq.CustomerID == 0 {
		seq = models.CustomerSequence{CustomerID: customerID, LastSeq: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", 0, err
		}
	} else {
		seq.LastSeq++
		err = tx.Model(&models.CustomerSequence{}).
			Where("customer_id = ?", customerID).
			Update("last_seq", seq.LastSeq).Error
		if err != nil {
			return "", 0, err
		}
	}
	return fmt.Sprintf("HP-%d-%04d", customerID, seq.LastSeq), seq.LastSeq, nil
}
