package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/workforce-api/internal/query"
)

// Paginate applies a normalized page to a GORM query.
func Paginate(p query.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}
