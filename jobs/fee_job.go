package jobs

import (
	"log"

	"github.com/academyhq/academy_backend/database"
	"github.com/academyhq/academy_backend/models"
	"github.com/academyhq/academy_backend/services"
)

// BackfillMissingFees runs the fee repair pass for every academy. The
// insert skips existing triples, so re-running it nightly is safe.
func BackfillMissingFees() {
	log.Println("Running job: BackfillMissingFees...")

	var academies []models.Academy
	if err := database.DB.Find(&academies).Error; err != nil {
		log.Printf("Error loading academies for fee backfill: %v", err)
		return
	}

	var total int64
	for _, academy := range academies {
		created, err := services.GenerateMissingFees(database.DB, academy.ID)
		if err != nil {
			log.Printf("Error backfilling fees for academy %s: %v", academy.ID, err)
			continue
		}
		total += created
	}

	if total == 0 {
		log.Println("No missing fee records found.")
		return
	}
	log.Printf("Created %d missing fee record(s).", total)
}
