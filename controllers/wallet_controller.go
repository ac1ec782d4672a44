package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/notify"
	"highpurchase/utils"
)

type DepositInput struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

// WalletDeposit takes prepaid funds into a customer wallet. The
// confirmation SMS goes out only after the transaction commits.
func WalletDeposit(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	custID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in DepositInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var row *models.WalletTransaction
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		row, err = ledger.Deposit(tx, ledger.DepositRequest{
			BusinessID: staff.BusinessID,
			CustomerID: custID,
			Amount:     in.Amount,
			Reference:  in.Reference,
			Note:       in.Note,
			ActorID:    staff.ID,
		})
		return err
	})
	if err != nil {
		respondLedgerError(c, "could not take deposit", err)
		return
	}

	var cust models.Customer
	if err := config.DB.First(&cust, custID).Error; err == nil {
		notify.Send(notify.DepositReceived(&cust, in.Amount, row.BalanceAfter))
	}
	c.JSON(http.StatusCreated, gin.H{"message": "deposit recorded", "data": row})
}

type AdjustInput struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// WalletAdjust posts a signed manual correction against a customer
// wallet, for till shortages, data-entry fixes and goodwill credits.
func WalletAdjust(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	custID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in AdjustInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var row *models.WalletTransaction
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		row, err = ledger.AdjustWallet(tx, ledger.AdjustRequest{
			BusinessID: staff.BusinessID,
			CustomerID: custID,
			Amount:     in.Amount,
			Reason:     in.Reason,
			ActorID:    staff.ID,
		})
		return err
	})
	if err != nil {
		respondLedgerError(c, "could not adjust wallet", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "wallet adjusted", "data": row})
}

// WalletStatement lists a customer's ledger rows newest first, with
// the cached balance alongside so the caller can see they agree.
func WalletStatement(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	custID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cust models.Customer
	if err := config.DB.Where("id = ? AND business_id = ?", custID, staff.BusinessID).
		First(&cust).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "customer not found", err)
		return
	}

	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.WalletTransaction
	if err := config.DB.Where("customer_id = ?", cust.ID).
		Order("id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not load statement", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "wallet statement",
		"balance": cust.WalletBalance,
		"data":    rows,
	})
}
