package handler

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paginationContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/news"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", "", 1, 20, false},
		{"explicit values", "?page=3&limit=50", 3, 50, false},
		{"limit at max", "?limit=100", 1, 100, false},
		{"page zero", "?page=0", 0, 0, true},
		{"negative page", "?page=-2", 0, 0, true},
		{"limit zero", "?limit=0", 0, 0, true},
		{"limit over max", "?limit=101", 0, 0, true},
		{"non-numeric page", "?page=abc", 0, 0, true},
		{"non-numeric limit", "?limit=ten", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, err := parsePagination(paginationContext(t, tt.query))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePagination() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrBadPagination) {
					t.Errorf("error = %v, want ErrBadPagination", err)
				}
				return
			}
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("parsePagination() = (%d, %d), want (%d, %d)", page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name           string
		page, limit    int
		total          int
		wantTotalPages int
	}{
		{"even division", 1, 20, 40, 2},
		{"remainder adds page", 1, 20, 41, 3},
		{"empty result", 1, 20, 0, 0},
		{"single partial page", 1, 20, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPagination(tt.page, tt.limit, tt.total)
			if p.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantTotalPages)
			}
			if p.Page != tt.page || p.PerPage != tt.limit || p.TotalItems != tt.total {
				t.Errorf("pagination = %+v", p)
			}
		})
	}
}
