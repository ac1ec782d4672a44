package config

import "highpurchase/models"

// SeedPermissions keeps the permission catalogue in step with the
// codes the routes guard on. Seeding is additive only; codes already
// present are never touched.
func SeedPermissions() {
	codes := []models.Permission{
		{Code: "MANAGE_SHOPS", Name: "Manage Shops"},
		{Code: "MANAGE_STAFF", Name: "Manage Staff & Grants"},
		{Code: "MANAGE_PRODUCTS", Name: "Manage Product Catalogue"},
		{Code: "MANAGE_STOCK", Name: "Manage Stock Levels"},
		{Code: "MANAGE_POLICIES", Name: "Manage Financing Policies"},
		{Code: "MANAGE_CUSTOMERS", Name: "Manage Customers"},

		{Code: "CREATE_PURCHASE", Name: "Create Purchases"},
		{Code: "EDIT_PURCHASE", Name: "Edit Purchase Items"},
		{Code: "RECORD_PAYMENT", Name: "Record Payments"},
		{Code: "CONFIRM_PAYMENT", Name: "Confirm & Reject Payments"},

		{Code: "WALLET_DEPOSIT", Name: "Take Wallet Deposits"},
		{Code: "WALLET_ADJUST", Name: "Adjust Wallet Balances"},

		{Code: "MANAGE_DELIVERIES", Name: "Manage Deliveries & Waybills"},
		{Code: "VIEW_REPORTS", Name: "View Reports"},
	}
	for _, p := range codes {
		var cnt int64
		DB.Model(&models.Permission{}).Where("code = ?", p.Code).Count(&cnt)
		if cnt == 0 {
			DB.Create(&p)
		}
	}
}
