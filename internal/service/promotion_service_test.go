package service

import (
	"errors"
	"testing"

	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

func TestValidatePromotion(t *testing.T) {
	tests := []struct {
		name    string
		p       model.Promotion
		wantErr error
	}{
		{"valid", model.Promotion{Code: "CS2026", StartYear: 2024, EndYear: 2026}, nil},
		{"lowercase code", model.Promotion{Code: "cs2026", StartYear: 2024, EndYear: 2026}, ErrInvalidCode},
		{"empty code", model.Promotion{Code: "", StartYear: 2024, EndYear: 2026}, ErrInvalidCode},
		{"code with dash", model.Promotion{Code: "CS-2026", StartYear: 2024, EndYear: 2026}, ErrInvalidCode},
		{"equal years", model.Promotion{Code: "CS2026", StartYear: 2026, EndYear: 2026}, ErrInvalidYears},
		{"inverted years", model.Promotion{Code: "CS2026", StartYear: 2026, EndYear: 2024}, ErrInvalidYears},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePromotion(&tt.p)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePromotion() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPromotionCapacityHelpers(t *testing.T) {
	p := model.Promotion{
		Capacity:   3,
		StudentIDs: []int{10, 11},
		CourseIDs:  []int{5},
	}

	if got := p.EnrollmentCount(); got != 2 {
		t.Errorf("EnrollmentCount() = %d, want 2", got)
	}
	if got := p.AvailableSpots(); got != 1 {
		t.Errorf("AvailableSpots() = %d, want 1", got)
	}
	if !p.HasStudent(10) || p.HasStudent(99) {
		t.Error("HasStudent() membership wrong")
	}
	if !p.HasCourse(5) || p.HasCourse(99) {
		t.Error("HasCourse() membership wrong")
	}

	full := model.Promotion{Capacity: 2, StudentIDs: []int{1, 2}}
	if got := full.AvailableSpots(); got != 0 {
		t.Errorf("AvailableSpots() on full promotion = %d, want 0", got)
	}
}
