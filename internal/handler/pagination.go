package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// ErrBadPagination rejects pagination query params outside their bounds.
var ErrBadPagination = errors.New("invalid pagination parameters")

// parsePagination reads page/limit query parameters. Missing values fall
// back to defaults; present values must be numeric with page >= 1 and
// 1 <= limit <= 100.
func parsePagination(c *gin.Context) (page, limit int, err error) {
	page, limit = defaultPage, defaultLimit

	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, ErrBadPagination
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, ErrBadPagination
		}
	}
	return page, limit, nil
}

// buildPagination assembles the response pagination block.
func buildPagination(page, limit, total int) *response.Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &response.Pagination{
		Page:       page,
		PerPage:    limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
