package postgres

import (
	"log"

	"github.com/niagahub/niaga-rate-service/internal/config"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.RateConfig) *gorm.DB {
	dsn := cfg.RateDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.RateSettingModel{},
		&models.ProviderModel{},
		&models.QuotaModel{},
		&models.RateObservationModel{},
		&models.SwitchEventModel{},
	)

	return db
}
