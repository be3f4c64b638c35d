package middleware

import (
	config "github.com/academyhq/academy_backend/configs"
	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// Caller is the resolved identity every scoped handler works from. The
// academy id is the tenant boundary: all queries must intersect with it.
type Caller struct {
	ID        uuid.UUID
	Role      string
	AcademyID uuid.UUID
}

const callerKey = "caller"

// CurrentCaller returns the identity stored by AdminRequired or
// TeacherRequired. Only valid behind one of those guards.
func CurrentCaller(c *fiber.Ctx) Caller {
	return c.Locals(callerKey).(Caller)
}

func parseClaims(c *fiber.Ctx) (id uuid.UUID, role string, academyID uuid.UUID, ok bool) {
	token, tok := c.Locals("user").(*jwt.Token)
	if !tok {
		return
	}
	claims, tok := token.Claims.(jwt.MapClaims)
	if !tok {
		return
	}
	idStr, _ := claims["user_id"].(string)
	role, _ = claims["role"].(string)
	academyStr, _ := claims["academy_id"].(string)

	var err error
	if id, err = uuid.Parse(idStr); err != nil {
		return
	}
	if academyID, err = uuid.Parse(academyStr); err != nil {
		return
	}
	ok = role != ""
	return
}

// AdminRequired verifies the token belongs to an existing admin with an
// academy assigned and stores the Caller for downstream handlers.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, role, academyID, ok := parseClaims(c)
		if !ok || role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}

		var admin models.Admin
		if err := database.DB.First(&admin, "id = ? AND academy_id = ?", id, academyID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid admin"})
		}
		if admin.AcademyID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Admin has no academy assigned"})
		}

		c.Locals(callerKey, Caller{ID: admin.ID, Role: "admin", AcademyID: admin.AcademyID})
		return c.Next()
	}
}

// TeacherRequired is the teacher-side counterpart of AdminRequired.
func TeacherRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, role, academyID, ok := parseClaims(c)
		if !ok || role != "teacher" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Teacher access required",
			})
		}

		var teacher models.Teacher
		if err := database.DB.First(&teacher, "id = ? AND academy_id = ?", id, academyID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid teacher"})
		}

		c.Locals(callerKey, Caller{ID: teacher.ID, Role: "teacher", AcademyID: teacher.AcademyID})
		return c.Next()
	}
}
