package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"highpurchase/config"
	"highpurchase/models"
	"highpurchase/notify"
	"highpurchase/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process env")
	}
	config.InitLogger()
	config.ConnectDB()

	config.DB.AutoMigrate(
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
	)

	config.SeedPermissions()
	notify.Use(notify.NewLogDispatcher(config.Log))

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "🚀 High Purchase API is running"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	config.Log.Infow("listening", "port", port)
	_ = r.Run(":" + port)
}
