package database

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"preorder/internal/config"
)

type Database struct {
	DB *gorm.DB
}

// New opens the hosted Supabase Postgres database, or a local SQLite file
// when the URL uses the sqlite:// scheme, and ensures the four preorder
// tables exist under their configured names.
func New(cfg *config.Config) (*Database, error) {
	var db *gorm.DB
	var err error
	var idDefault string

	if strings.HasPrefix(cfg.SupabaseURL, "sqlite://") {
		// SQLite for development and tests; ids are assigned by the application
		dbPath := strings.TrimPrefix(cfg.SupabaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	} else {
		db, err = gorm.Open(postgres.Open(cfg.SupabaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		idDefault = " DEFAULT gen_random_uuid()"
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range tableStatements(cfg, idDefault) {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return &Database{DB: db}, nil
}

func tableStatements(cfg *config.Config, idDefault string) []string {
	offerDDL := `
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY%s,
		internal_name TEXT UNIQUE NOT NULL,
		shipping_text TEXT,
		discount_amount INTEGER,
		stoq_offer_id BIGINT,
		container_name TEXT,
		container_arrival_mmdd TEXT,
		status TEXT
	);`

	variantDDL := `
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY%s,
		offer_id TEXT NOT NULL,
		variant_id TEXT NOT NULL
	);`

	return []string{
		fmt.Sprintf(offerDDL, cfg.OfferTable, idDefault),
		fmt.Sprintf(offerDDL, cfg.BatchOfferTable, idDefault),
		fmt.Sprintf(variantDDL, cfg.VariantTable, idDefault),
		fmt.Sprintf(variantDDL, cfg.BatchVariantTable, idDefault),
	}
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
