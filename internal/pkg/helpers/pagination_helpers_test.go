package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size  int
		offset, lim uint64
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 10, 0, 10},
		{2, 0, 10, 10},
		{2, 500, 10, 10},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.lim, limit)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(21), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		page, size int
	}{
		{"", DefaultPage, DefaultPageSize},
		{"?page=4&size=25", 4, 25},
		{"?page=-1&size=1000", DefaultPage, DefaultPageSize},
		{"?page=abc&size=xyz", DefaultPage, DefaultPageSize},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/items"+tt.query, nil)

		page, size := ParsePaginationParams(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.size, size, tt.query)
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
