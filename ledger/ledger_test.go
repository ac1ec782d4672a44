package ledger

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"highpurchase/models"
)

// testEnv seeds the smallest world an engine test needs: one business,
// one shop, one staff member and one customer. Tests run against a
// throwaway sqlite file; the sqlite driver drops row-locking clauses,
// which is fine for single-goroutine tests.
type testEnv struct {
	DB       *gorm.DB
	Business models.Business
	Shop     models.Shop
	Staff    models.Staff
	Customer models.Customer
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Business{},
		&models.Shop{},
		&models.Staff{},
		&models.ShopMembership{},
		&models.Permission{},
		&models.StaffPermission{},
		&models.Customer{},
		&models.CustomerSequence{},
		&models.Product{},
		&models.ShopStock{},
		&models.StockMovement{},
		&models.FinancingPolicy{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.Payment{},
		&models.WalletTransaction{},
		&models.Waybill{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{DB: openTestDB(t)}

	env.Business = models.Business{Name: "Adom Traders", Slug: "adom-traders", IsActive: true}
	require.NoError(t, env.DB.Create(&env.Business).Error)

	env.Shop = models.Shop{BusinessID: env.Business.ID, Name: "Osu Branch", IsActive: true}
	require.NoError(t, env.DB.Create(&env.Shop).Error)

	env.Staff = models.Staff{BusinessID: env.Business.ID, FullName: "Ama Mensah", Email: "ama@adom.example", IsActive: true}
	require.NoError(t, env.DB.Create(&env.Staff).Error)

	env.Customer = models.Customer{
		BusinessID: env.Business.ID,
		ShopID:     env.Shop.ID,
		FullName:   "Kofi Boateng",
		Phone:      "+233200000001",
		IsActive:   true,
	}
	require.NoError(t, env.DB.Create(&env.Customer).Error)
	return env
}

// seedProduct creates a product with a shop stock row at the default
// shop.
func (e *testEnv) seedProduct(t *testing.T, name, sku string, cash, layaway, credit, shopQty int64) models.Product {
	t.Helper()
	prod := models.Product{
		BusinessID:   e.Business.ID,
		Name:         name,
		SKU:          sku,
		CashPrice:    cash,
		LayawayPrice: layaway,
		CreditPrice:  credit,
		IsActive:     true,
	}
	require.NoError(t, e.DB.Create(&prod).Error)
	ss := models.ShopStock{ShopID: e.Shop.ID, ProductID: prod.ID, Quantity: shopQty}
	require.NoError(t, e.DB.Create(&ss).Error)
	return prod
}

// seedPoolProduct creates a product with no shop stock row, so sales
// draw from the business-wide pool quantity.
func (e *testEnv) seedPoolProduct(t *testing.T, name, sku string, cash, layaway, credit, poolQty int64) models.Product {
	t.Helper()
	prod := models.Product{
		BusinessID:    e.Business.ID,
		Name:          name,
		SKU:           sku,
		CashPrice:     cash,
		LayawayPrice:  layaway,
		CreditPrice:   credit,
		StockQuantity: poolQty,
		IsActive:      true,
	}
	require.NoError(t, e.DB.Create(&prod).Error)
	return prod
}

func (e *testEnv) seedPolicy(t *testing.T, itype models.InterestType, rate string, graceDays, maxTenorDays int) models.FinancingPolicy {
	t.Helper()
	pol := models.FinancingPolicy{
		BusinessID:   e.Business.ID,
		InterestType: itype,
		InterestRate: decimal.RequireFromString(rate),
		GraceDays:    graceDays,
		MaxTenorDays: maxTenorDays,
		IsActive:     true,
	}
	require.NoError(t, e.DB.Create(&pol).Error)
	return pol
}

func (e *testEnv) deposit(t *testing.T, amount int64) {
	t.Helper()
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		_, err := Deposit(tx, DepositRequest{
			BusinessID: e.Business.ID,
			CustomerID: e.Customer.ID,
			Amount:     amount,
			ActorID:    e.Staff.ID,
		})
		return err
	})
	require.NoError(t, err)
}

func (e *testEnv) createPurchase(t *testing.T, in CreatePurchaseInput) *PurchaseOutcome {
	t.Helper()
	var out *PurchaseOutcome
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = CreatePurchase(tx, in)
		return err
	})
	require.NoError(t, err)
	return out
}

func (e *testEnv) purchaseInput(ptype models.PurchaseType, prod models.Product, qty int64) CreatePurchaseInput {
	return CreatePurchaseInput{
		BusinessID: e.Business.ID,
		ShopID:     e.Shop.ID,
		CustomerID: e.Customer.ID,
		Type:       ptype,
		Items:      []PurchaseItemInput{{ProductID: prod.ID, Quantity: qty}},
		ActorID:    e.Staff.ID,
	}
}

func (e *testEnv) reloadCustomer(t *testing.T) models.Customer {
	t.Helper()
	var cust models.Customer
	require.NoError(t, e.DB.First(&cust, e.Customer.ID).Error)
	return cust
}

func (e *testEnv) reloadPurchase(t *testing.T, id uint) models.Purchase {
	t.Helper()
	var p models.Purchase
	require.NoError(t, e.DB.Preload("Items").First(&p, id).Error)
	return p
}

func (e *testEnv) walletRows(t *testing.T) []models.WalletTransaction {
	t.Helper()
	var rows []models.WalletTransaction
	require.NoError(t, e.DB.Where("customer_id = ?", e.Customer.ID).Order("id ASC").Find(&rows).Error)
	return rows
}

func (e *testEnv) shopQty(t *testing.T, productID uint) int64 {
	t.Helper()
	var ss models.ShopStock
	require.NoError(t, e.DB.Where("shop_id = ? AND product_id = ?", e.Shop.ID, productID).First(&ss).Error)
	return ss.Quantity
}

func (e *testEnv) waybillCount(t *testing.T, purchaseID uint) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, e.DB.Model(&models.Waybill{}).Where("purchase_id = ?", purchaseID).Count(&cnt).Error)
	return cnt
}

func (e *testEnv) payments(t *testing.T, purchaseID uint) []models.Payment {
	t.Helper()
	var rows []models.Payment
	require.NoError(t, e.DB.Where("purchase_id = ?", purchaseID).Order("id ASC").Find(&rows).Error)
	return rows
}
