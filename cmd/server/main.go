package main

import (
	"log"
	"net/http"

	"riparo-be/internal/api"
	"riparo-be/internal/cache"
	"riparo-be/internal/config"
	"riparo-be/internal/customer"
	"riparo-be/internal/db"
	"riparo-be/internal/logger"
	"riparo-be/internal/order"
	"riparo-be/internal/pricing"
	"riparo-be/internal/technician"
	"riparo-be/internal/user"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	customerRepo := customer.NewRepository(database)

	technicianRepo := technician.NewRepository(database)
	technicianSvc := technician.NewServiceWithPromotion(technicianRepo, userRepo)

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr, "riparo")
	}

	orderRepo := order.NewRepository(database)
	engine := order.NewEngine(orderRepo)
	estimator := pricing.NewEstimator()
	orderSvc := order.NewService(orderRepo, customerRepo, technicianSvc, engine, estimator, c)

	router := api.NewRouter(api.Handlers{
		Auth:        api.NewAuthHandler(userSvc),
		Orders:      api.NewOrderHandler(orderSvc),
		Technicians: api.NewTechnicianHandler(technicianSvc),
	})

	log.Printf("🚀 Server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
