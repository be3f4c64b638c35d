package database

import (
	"fmt"
	"log"

	config "github.com/academyhq/academy_backend/configs"
	"github.com/academyhq/academy_backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		// Unique-index violations must surface as gorm.ErrDuplicatedKey so
		// the attendance and fee paths can answer with a conflict.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Academy{},
		&models.Admin{},
		&models.Teacher{},
		&models.Student{},
		&models.Batch{},
		&models.Fee{},
		&models.Attendance{},
		&models.AttendanceEntry{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}
