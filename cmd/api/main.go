package main

import (
	_ "jewelry-backend/api/swagger" // swagger docs
	"jewelry-backend/internal/client"
	"jewelry-backend/internal/config"
	"jewelry-backend/internal/database"
	"jewelry-backend/internal/handler"
	"jewelry-backend/internal/invoice"
	"jewelry-backend/internal/middleware"
	"jewelry-backend/internal/repository"
	"jewelry-backend/internal/service"
	"jewelry-backend/internal/websocket"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Jewelry Retail Lifecycle API
// @version         1.0
// @description     Order, repair and return lifecycle coordination for a jewelry retail back office.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration load failed: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	logger.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// External service clients
	pricingClient := client.NewPricingClient(cfg.PricingServiceURL, cfg.OutboundTimeout)
	inventoryClient := client.NewInventoryClient(cfg.InventoryServiceURL, cfg.OutboundTimeout)
	paymentClient := client.NewPaymentClient(cfg.PaymentServiceURL, cfg.OutboundTimeout)
	channelGateway := client.NewChannelGateway(cfg.NotificationGatewayURL, cfg.OutboundTimeout)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	orderRepo := repository.NewOrderRepository(db)
	repairRepo := repository.NewRepairRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	itemRepo := repository.NewJewelryItemRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, customerRepo, channelGateway, logger)
	orderService := service.NewOrderService(orderRepo, itemRepo, customerRepo, historyRepo, txManager,
		pricingClient, inventoryClient, notificationService, wsHub, logger)
	repairService := service.NewRepairService(repairRepo, orderRepo, historyRepo, txManager,
		notificationService, wsHub, logger)
	returnService := service.NewReturnService(returnRepo, orderRepo, itemRepo, historyRepo, txManager,
		paymentClient, inventoryClient, notificationService, wsHub, logger)

	invoiceGenerator := invoice.NewGenerator(invoice.Business{
		Name:    cfg.BusinessName,
		Address: cfg.BusinessAddress,
		GSTIN:   cfg.BusinessGSTIN,
		Phone:   cfg.BusinessPhone,
	}, cfg.GSTInterstate)
	invoiceService := service.NewInvoiceService(orderRepo, invoiceGenerator)

	// Initialize Handlers
	if cfg.AppEnv == "development" {
		handler.EnableVerboseErrors()
	}
	orderHandler := handler.NewOrderHandler(orderService, invoiceService)
	repairHandler := handler.NewRepairHandler(repairService)
	returnHandler := handler.NewReturnHandler(returnService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Set up Gin Router
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	orderHandler.RegisterRoutes(router.Group(""))
	repairHandler.RegisterRoutes(router.Group(""))
	returnHandler.RegisterRoutes(router.Group(""))
	notificationHandler.RegisterRoutes(router.Group(""))

	logger.Infof("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
