package infra

import (
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitPostgresql(logger *zap.Logger) *gorm.DB {
	dsn := os.Getenv("POSTGRES_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	return db
}

func ClosePostgresql(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get underlying sql.DB", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("failed to close database connection", zap.Error(err))
	} else {
		logger.Info("database connection closed")
	}
}
