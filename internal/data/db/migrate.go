package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/courserate-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// EnsureReviewConstraints adds the foreign keys and score checks gorm does not create
// while DisableForeignKeyConstraintWhenMigrating is set. Postgres only.
func EnsureReviewConstraints(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"fk_review_user", `
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_review_user') THEN
					ALTER TABLE review ADD CONSTRAINT fk_review_user
					FOREIGN KEY (user_id) REFERENCES "user"(id) ON DELETE RESTRICT;
				END IF;
			END $$;`},
		{"fk_review_course", `
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_review_course') THEN
					ALTER TABLE review ADD CONSTRAINT fk_review_course
					FOREIGN KEY (course_id) REFERENCES course(id) ON DELETE CASCADE;
				END IF;
			END $$;`},
		{"chk_review_scores", `
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_review_scores') THEN
					ALTER TABLE review ADD CONSTRAINT chk_review_scores CHECK (
						rating BETWEEN 1 AND 5 AND
						difficulty BETWEEN 1 AND 5 AND
						workload BETWEEN 1 AND 5 AND
						learning_value BETWEEN 1 AND 5
					);
				END IF;
			END $$;`},
		{"idx_review_course_created_at", `
			CREATE INDEX IF NOT EXISTS idx_review_course_created_at
			ON review (course_id, created_at DESC);`},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if !s.IsPostgres() {
		return nil
	}
	if err := EnsureReviewConstraints(s.db); err != nil {
		s.log.Error("Review constraint migration failed", "error", err)
		return err
	}
	return nil
}
