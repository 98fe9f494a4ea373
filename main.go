package main

import (
	"context"
	"coursesi/config"
	"coursesi/database"
	"coursesi/routers"
	"coursesi/services/quiz"
	"coursesi/utils"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	svc := quiz.NewService(db, quiz.Options{
		DefaultPassingPercent: config.AppConfig.DefaultPassingPercent,
		Publisher:             utils.NewCertificateDispatcher(db, config.AppConfig),
	})

	app := fiber.New()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	routers.SetupRoutes(app, routers.Options{
		DB:              db,
		Service:         svc,
		ShufflePostTest: config.AppConfig.ShufflePostTest,
	})

	if config.AppConfig.ReconcileEnabled {
		scheduler, err := utils.InitializeCertificateScheduler(svc, config.AppConfig.ReconcileCron)
		if err != nil {
			log.Fatalf("Invalid RECONCILE_CRON %q: %v", config.AppConfig.ReconcileCron, err)
		}
		defer scheduler.Stop()
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithContext(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}

	// let in-flight certificate notifications finish
	svc.Issuer.Wait()
}
