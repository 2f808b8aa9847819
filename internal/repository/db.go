package repository

import (
	"time"

	"EventSync/internal/config"
	"EventSync/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB 打开PostgreSQL连接并配置连接池。TranslateError 将唯一约束冲突转为 gorm.ErrDuplicatedKey
func OpenDB(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if logLevel == "debug" {
		gormLogger = logger.Default.LogMode(logger.Info) // 显示SQL日志
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetConnMaxLifetime(lifetime)
	return db, nil
}

// AutoMigrate 库表不存在则自动创建
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Event{})
}
