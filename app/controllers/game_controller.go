package controllers

import (
	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/database"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func CreateGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{
		Id:     pkg.RandString(8),
		Name:   gameCreateDto.Name,
		Status: "false",
	}
	if _, err := db.Model(game).Insert(); err != nil {
		logrus.WithError(err).Error("failed creating game")
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"id": game.Id})
}

func GetAllAvailGames(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	var games []models.Game
	if err := db.Model(&games).Where("status = ?", "false").Select(); err != nil {
		logrus.WithError(err).Error("failed listing games")
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(games)
}

func VerifyGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{Id: verifyGameDto.Code}
	if err := db.Model(game).WherePK().Select(); err != nil {
		return c.JSON(fiber.Map{"status": false})
	}
	return c.JSON(fiber.Map{"status": true})
}

// FindAvailGame picks any joinable game for quick matchmaking.
func FindAvailGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	game := new(models.Game)
	if err := db.Model(game).Where("status = ?", "false").Limit(1).Select(); err != nil {
		return c.SendStatus(404)
	}
	return c.JSON(fiber.Map{"id": game.Id})
}

// GameState serves the latest snapshot from the redis mirror so pollers and
// reconnecting clients never touch the engine lock.
func GameState(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	conn, err := cache.CreateRedisConnection()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	defer conn.Close()

	state, err := cache.Get(id+".state", &conn)
	if err != nil {
		return c.SendStatus(404)
	}
	c.Set("Content-Type", "application/json")
	return c.SendString(state)
}
