package routes

import (
	"highpurchase/controllers"
	"highpurchase/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {

	api := r.Group("/api")
	{

		// ================= PUBLIC =================
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.RegisterBusiness)
			auth.POST("/login", controllers.Login)
		}

		// ================= STAFF (token required) =================
		staff := api.Group("/", middlewares.StaffAuth())
		{
			staff.GET("/profile", controllers.Profile)
			staff.PUT("/profile", controllers.UpdateProfile)
			staff.PUT("/profile/password", controllers.ChangePassword)
			staff.GET("/permissions", controllers.ListPermissions)

			shops := staff.Group("/shops")
			{
				shops.GET("/", controllers.ListShops)
				shops.POST("/", middlewares.RequirePerm("MANAGE_SHOPS"), controllers.CreateShop)
				shops.PUT("/:id", middlewares.RequirePerm("MANAGE_SHOPS"), controllers.UpdateShop)
				shops.GET("/:id/policy", controllers.EffectivePolicy)
				shops.GET("/:id/stock", controllers.ListShopStock)
				shops.PUT("/:id/stock", middlewares.RequirePerm("MANAGE_STOCK"), controllers.SetShopStock)
				shops.GET("/:id/movements", controllers.ListStockMovements)
			}

			team := staff.Group("/staff", middlewares.RequirePerm("MANAGE_STAFF"))
			{
				team.GET("/", controllers.ListStaff)
				team.POST("/", controllers.CreateStaff)
				team.PUT("/:id/permissions", controllers.SetStaffPermissions)
				team.POST("/:id/deactivate", controllers.DeactivateStaff)
			}

			policies := staff.Group("/policies", middlewares.RequirePerm("MANAGE_POLICIES"))
			{
				policies.GET("/", controllers.ListPolicies)
				policies.POST("/", controllers.CreatePolicy)
				policies.POST("/:id/deactivate", controllers.DeactivatePolicy)
			}

			customers := staff.Group("/customers")
			{
				customers.GET("/", controllers.ListCustomers)
				customers.GET("/:id", controllers.GetCustomer)
				customers.POST("/", middlewares.RequirePerm("MANAGE_CUSTOMERS"), controllers.CreateCustomer)
				customers.PUT("/:id", middlewares.RequirePerm("MANAGE_CUSTOMERS"), controllers.UpdateCustomer)

				customers.GET("/:id/wallet", controllers.WalletStatement)
				customers.POST("/:id/wallet/deposit", middlewares.RequirePerm("WALLET_DEPOSIT"), controllers.WalletDeposit)
				customers.POST("/:id/wallet/adjust", middlewares.RequirePerm("WALLET_ADJUST"), controllers.WalletAdjust)
			}

			products := staff.Group("/products")
			{
				products.GET("/", controllers.ListProducts)
				products.GET("/:id", controllers.GetProduct)
				products.POST("/", middlewares.RequirePerm("MANAGE_PRODUCTS"), controllers.CreateProduct)
				products.PUT("/:id", middlewares.RequirePerm("MANAGE_PRODUCTS"), controllers.UpdateProduct)
				products.PUT("/:id/stock", middlewares.RequirePerm("MANAGE_STOCK"), controllers.SetProductPoolStock)
			}

			purchases := staff.Group("/purchases")
			{
				purchases.GET("/", controllers.ListPurchases)
				purchases.GET("/:id", controllers.GetPurchase)
				purchases.POST("/quote", middlewares.RequirePerm("CREATE_PURCHASE"), controllers.QuotePurchase)
				purchases.POST("/", middlewares.RequirePerm("CREATE_PURCHASE"), controllers.CreatePurchase)
				purchases.PUT("/:id/items", middlewares.RequirePerm("EDIT_PURCHASE"), controllers.UpdatePurchaseItems)
				purchases.POST("/:id/payments", middlewares.RequirePerm("RECORD_PAYMENT"), controllers.RecordPayment)
			}

			payments := staff.Group("/payments")
			{
				payments.GET("/", controllers.ListPayments)
				payments.GET("/:id/receipt", controllers.GetReceipt)
				payments.POST("/:id/confirm", middlewares.RequirePerm("CONFIRM_PAYMENT"), controllers.ConfirmPayment)
				payments.POST("/:id/reject", middlewares.RequirePerm("CONFIRM_PAYMENT"), controllers.RejectPayment)
			}

			waybills := staff.Group("/waybills", middlewares.RequirePerm("MANAGE_DELIVERIES"))
			{
				waybills.GET("/", controllers.ListWaybills)
				waybills.GET("/:id", controllers.GetWaybill)
				waybills.PUT("/:id/delivery", controllers.UpdateDelivery)
			}

			reports := staff.Group("/reports", middlewares.RequirePerm("VIEW_REPORTS"))
			{
				reports.GET("/collections", controllers.CollectionsReport)
				reports.GET("/aging", controllers.AgingReport)
				reports.GET("/risk", controllers.RiskReport)
			}
		}
	}
}
