package routes

import (
	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(a *fiber.App) {
	route := a.Group("/user")

	route.Post("register", controllers.CreateUser)
	route.Post("login", controllers.Login)
}
