package handlers

import (
	"errors"
	"strings"
	"time"

	config "github.com/academyhq/academy_backend/configs"
	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/models"
	"github.com/academyhq/academy_backend/notifications"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type RegisterRequest struct {
	AcademyName string `json:"academy_name" validate:"required,min=3"`
	AdminName   string `json:"admin_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Username    string `json:"username" validate:"required,min=4"`
	Password    string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	AcademyName string `json:"academy_name" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// RegisterAcademy creates the tenant root and its first admin in one
// transaction. The academy name is unique case-insensitively.
func RegisterAcademy(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	name := strings.TrimSpace(req.AcademyName)
	var academy models.Academy
	var admin models.Admin
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Academy
		if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err == nil {
			return errConflict
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		academy = models.Academy{Name: name, Email: req.Email, Phone: req.Phone}
		if err := tx.Create(&academy).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errConflict
			}
			return err
		}

		admin = models.Admin{
			AcademyID: academy.ID,
			Name:      req.AdminName,
			Email:     req.Email,
			Phone:     req.Phone,
			Username:  strings.ToLower(req.Username),
			Password:  string(hashedPassword),
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		if errors.Is(err, errConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Academy with this name already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Registration failed"})
	}

	go notifications.SendEmail(admin.Name, admin.Email, "Welcome!",
		"<h1>Welcome!</h1><p>Your academy has been registered. You can now add teachers, students and batches.</p>")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Registration successful",
		"academy_id": academy.ID,
		"admin_id":   admin.ID,
	})
}

func issueToken(userID, academyID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"academy_id": academyID,
		"role":       role,
		"exp":        time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Config("JWT_SECRET")))
}

// Login authenticates an admin or a teacher by username within the
// named academy. Usernames are only unique per academy, so the academy
// is resolved first and both lookups are scoped to it. Admins are tried
// before teachers.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var academy models.Academy
	if err := database.DB.Where("LOWER(name) = LOWER(?)", strings.TrimSpace(req.AcademyName)).
		First(&academy).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Academy not found"})
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	var admin models.Admin
	if err := database.DB.Where("username = ? AND academy_id = ?", username, academy.ID).First(&admin).Error; err == nil {
		if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		t, err := issueToken(admin.ID.String(), admin.AcademyID.String(), "admin")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
		}
		return c.JSON(fiber.Map{"token": t, "role": "admin", "user": admin})
	}

	var teacher models.Teacher
	if err := database.DB.Where("username = ? AND academy_id = ?", username, academy.ID).First(&teacher).Error; err == nil {
		if bcrypt.CompareHashAndPassword([]byte(teacher.Password), []byte(req.Password)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		t, err := issueToken(teacher.ID.String(), teacher.AcademyID.String(), "teacher")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue token"})
		}
		return c.JSON(fiber.Map{"token": t, "role": "teacher", "user": teacher})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
}
