package main

import (
	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/DedS3t/monopoly-engine/pkg/routes"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	socket "github.com/DedS3t/monopoly-engine/platform/sockets"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	logging.Init()

	mgr, err := engine.NewManager()
	if err != nil {
		logrus.WithError(err).Fatal("failed loading board")
	}

	app := fiber.New()

	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: controllers.JWTSecret(),
	}))

	app.Get("/user/cur", controllers.Cur)
	go socket.CreateSocketIOServer(mgr)
	app.Listen(":4101")
}
