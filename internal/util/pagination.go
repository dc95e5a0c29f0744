package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// PageParams carries the parsed page/limit query parameters.
type PageParams struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the current page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the pagination block of list responses.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// ListResponse is the envelope for paginated list endpoints.
type ListResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// ParsePageParams reads page/limit query parameters, clamping to sane values.
func ParsePageParams(c *gin.Context, defaultLimit int) PageParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return PageParams{Page: page, Limit: limit}
}

// NewListResponse wraps data in the {data, pagination} envelope.
func NewListResponse(data interface{}, total int64, params PageParams) ListResponse {
	pages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return ListResponse{
		Data: data,
		Pagination: Pagination{
			Total: total,
			Page:  params.Page,
			Limit: params.Limit,
			Pages: pages,
		},
	}
}

// ParseUintParam parses a numeric path parameter.
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		RespondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(val), true
}
