package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/query"
)

// GetPagination reads page and limit from the query string. Missing or
// malformed values fall back to the defaults; out-of-range values clamp.
func GetPagination(c *gin.Context) query.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = constants.DefaultPageSize
	}
	return query.NewPage(page, limit)
}

// ParseIDParam parses a positive numeric path parameter.
func ParseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ParseOptionalID parses a positive numeric query parameter. The second
// result is false when the value is present but malformed.
func ParseOptionalID(c *gin.Context, name string) (*uint64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	return &id, true
}
