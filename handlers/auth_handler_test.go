package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB wires database.DB to the database named by TEST_DATABASE_URL
// with empty tables, or skips the test when the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Academy{},
		&models.Admin{},
		&models.Teacher{},
		&models.Student{},
		&models.Batch{},
		&models.Fee{},
		&models.Attendance{},
		&models.AttendanceEntry{},
	))

	for _, table := range []string{
		"attendance_entries", "attendances", "fees",
		"batch_students", "batch_teachers", "batches",
		"students", "teachers", "admins", "academies",
	} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	database.DB = db
	return db
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

// Two academies may legitimately hold the same username; login has to
// resolve the academy first and only look inside it.
func TestLogin_ScopedToAcademy(t *testing.T) {
	db := openTestDB(t)
	t.Setenv("JWT_SECRET", "test-secret")

	north := models.Academy{Name: "North Academy", Email: "north@example.com", Phone: "0700000001"}
	south := models.Academy{Name: "South Academy", Email: "south@example.com", Phone: "0700000002"}
	require.NoError(t, db.Create(&north).Error)
	require.NoError(t, db.Create(&south).Error)

	require.NoError(t, db.Create(&models.Teacher{
		AcademyID: north.ID, Name: "Alpha North", Username: "alpha",
		Password: hashPassword(t, "north-pass"),
	}).Error)
	require.NoError(t, db.Create(&models.Teacher{
		AcademyID: south.ID, Name: "Alpha South", Username: "alpha",
		Password: hashPassword(t, "south-pass"),
	}).Error)

	app := fiber.New()
	app.Post("/login", Login)

	login := func(academy, password string) *http.Response {
		body := `{"academy_name":"` + academy + `","username":"alpha","password":"` + password + `"}`
		resp, err := app.Test(jsonRequest("POST", "/login", body), -1)
		require.NoError(t, err)
		return resp
	}

	// Each tenant's credentials work against its own academy.
	resp := login("North Academy", "north-pass")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = login("South Academy", "south-pass")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Role string `json:"role"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "teacher", out.Role)
	assert.Equal(t, "Alpha South", out.User.Name)

	// The other tenant's password must not open this academy's account.
	resp = login("North Academy", "south-pass")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = login("Nowhere Academy", "north-pass")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLogin_RequiresAcademyName(t *testing.T) {
	openTestDB(t)

	app := fiber.New()
	app.Post("/login", Login)

	resp, err := app.Test(jsonRequest("POST", "/login",
		`{"username":"alpha","password":"north-pass"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
