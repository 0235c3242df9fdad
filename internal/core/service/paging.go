package service

import "github.com/jobnexus/jobboard/internal/core/ports"

const (
	defaultLimit = 20
	maxLimit     = 100
)

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func newPage[T any](items []T, total int64, page, limit int) *ports.Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.Page[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}
