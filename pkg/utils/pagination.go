package utils

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page/limit query parameters. The limit is honored
// as given, however large; only non-positive values fall back to defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		limit = 20
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func ApplyPagination(query *gorm.DB, p Pagination) *gorm.DB {
	return query.Offset(p.Offset()).Limit(p.Limit)
}
