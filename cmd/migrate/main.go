package main

import (
	"log"
	"os"

	"admissions-be/internal/model"
	"admissions-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 3. Pre-Migration: extensions and the application_choices source table.
	// application_choices is owned by the admissions core system; it is
	// created here only so a fresh environment can run end to end.
	log.Println("Step 1: Setting up extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,

		`CREATE TABLE IF NOT EXISTS application_choices (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			application_id UUID NOT NULL,
			course_id UUID NOT NULL,
			institution_id UUID NOT NULL,
			aps_score INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_application_choices_course ON application_choices (course_id);`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Setup SQL failed: %v\nSQL: %s", err, sql)
		}
	}

	// 4. AutoMigrate the owned tables.
	log.Println("Step 2: Migrating models...")

	err = db.AutoMigrate(
		&model.InstitutionMember{},
		&model.AgentSession{},
		&model.AgentDecision{},
		&model.CourseIntakeSetting{},
		&model.ApplicationChoiceRanking{},
	)
	if err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-migration guards the model tags cannot express.
	log.Println("Step 3: Applying constraints...")

	constraintSQL := []string{
		// The ledger is append-only; revoke in-place rewrites at the schema
		// level so a buggy caller cannot bypass the repository contract.
		`CREATE OR REPLACE RULE agent_decisions_no_update AS ON UPDATE TO agent_decisions DO INSTEAD NOTHING;`,
		`CREATE OR REPLACE RULE agent_decisions_no_delete AS ON DELETE TO agent_decisions DO INSTEAD NOTHING;`,

		`CREATE INDEX IF NOT EXISTS idx_agent_sessions_pending ON agent_sessions (created_at) WHERE status = 'pending';`,
		`CREATE INDEX IF NOT EXISTS idx_agent_sessions_deadline ON agent_sessions (deadline_at) WHERE status = 'running';`,
	}

	for _, sql := range constraintSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Constraint SQL failed: %v\nSQL: %s", err, sql)
		}
	}

	log.Println("Migration completed successfully.")
}
