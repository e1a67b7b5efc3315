package main

import (
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"backend/internal/checkout"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/events"
	"backend/internal/gateway"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/orders"
	"backend/internal/pricing"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("⚠️ order index warning:", err)
	}
	if err := database.EnsureTempOrderIndexes(db); err != nil {
		log.Println("⚠️ temp order index warning:", err)
	}

	mode, err := pricing.ParseFallbackMode(config.AppEnv.PriceFallback)
	if err != nil {
		log.Fatal(err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: config.AppEnv.RedisAddr})
	sessions := checkout.NewRedisStore(rdb, config.AppEnv.CheckoutSessionTTL)

	gw := gateway.NewClient(
		config.AppEnv.RazorpayBaseURL,
		config.AppEnv.RazorpayKeyID,
		config.AppEnv.RazorpayKeySecret,
	)

	store := orders.NewMongoStore(db)
	writer := orders.NewWriter(store)

	var publisher handlers.EventPublisher
	if config.AppEnv.KafkaBrokers != "" {
		p := events.NewPublisher(strings.Split(config.AppEnv.KafkaBrokers, ","))
		defer p.Close()
		publisher = p
		log.Println("Kafka order events enabled:", config.AppEnv.KafkaBrokers)
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	r.POST("/checkout", handlers.Checkout(gw, sessions, mode, config.AppEnv.JWTSecret))
	r.POST("/razorpay/verify", handlers.VerifyPayment(
		config.AppEnv.RazorpayKeySecret,
		sessions,
		writer,
		publisher,
	))

	user := r.Group("/orders")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("", handlers.GetOrders(db, store))
		user.GET("/status", handlers.GetOrderStatus(store))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
