package database

import (
	"errors"
	"fmt"
	"time"

	"skillup-go/internal/config"
	logging "skillup-go/internal/logging"
	"skillup-go/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres through lib/pq and runs migrations.
func Open(dbConf config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dbConf.DSN(),
	}), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully.")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed successfully.")

	activityIndex := `CREATE INDEX IF NOT EXISTS idx_user_activities_recent ON user_activities (user_id, timestamp DESC);`
	if err := db.Exec(activityIndex).Error; err != nil {
		return nil, fmt.Errorf("failed to create custom index on activities table: %w", err)
	}
	log.Info("Custom indexes ensured successfully.")
	return db, nil
}

// Migrate creates tables, columns and the indexes declared in struct tags.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.Notification{},
		&models.Order{},
		&models.LearningPath{},
		&models.Content{},
		&models.UserLearningPath{},
		&models.UserProgress{},
		&models.UserActivity{},
		&models.Assessment{},
		&models.Question{},
		&models.AssessmentResult{},
		&models.UserAnswer{},
		&models.FileUpload{},
		&models.FileShare{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
