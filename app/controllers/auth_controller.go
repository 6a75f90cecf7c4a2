package controllers

import (
	"os"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/database"
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"
)

// JWTSecret is shared with the jwt middleware in main.
func JWTSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("secret")
}

func CreateUser(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(userDto.Pass), bcrypt.DefaultCost)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	_, err = db.Model(&models.User{
		Id:       uuid.NewV4().String(),
		Email:    userDto.Email,
		Password: string(hash),
	}).Insert()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.SendStatus(201)
}

func Login(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	userDto := new(models.UserDto)
	if err := c.BodyParser(userDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	user := new(models.User)
	if err := db.Model(user).Where("email = ?", userDto.Email).Select(); err != nil {
		return c.SendStatus(401)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(userDto.Pass)) != nil {
		return c.SendStatus(401)
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = user.Id
	t, err := token.SignedString(JWTSecret())
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"access_token": t})
}

func Cur(c *fiber.Ctx) error {
	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)
	user_id := claims["user_id"].(string)
	return c.SendString(user_id)
}
