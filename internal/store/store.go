package store

import (
	"gorm.io/gorm"

	"preorder/internal/config"
	"preorder/internal/database"
)

// Store wraps the four preorder tables. Table names come from configuration,
// so every query goes through gorm's Table() rather than model defaults.
type Store struct {
	db  *gorm.DB
	cfg *config.Config
}

func New(db *database.Database, cfg *config.Config) *Store {
	return &Store{
		db:  db.DB,
		cfg: cfg,
	}
}

func (s *Store) offers() *gorm.DB {
	return s.db.Table(s.cfg.OfferTable)
}

func (s *Store) batchOffers() *gorm.DB {
	return s.db.Table(s.cfg.BatchOfferTable)
}

func (s *Store) variants() *gorm.DB {
	return s.db.Table(s.cfg.VariantTable)
}

func (s *Store) batchVariants() *gorm.DB {
	return s.db.Table(s.cfg.BatchVariantTable)
}

func chunked[T any](items []T, size int) [][]T {
	if size <= 0 {
		return [][]T{items}
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
