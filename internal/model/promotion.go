package model

import "time"

// PromotionStatus is the lifecycle state of a cohort.
type PromotionStatus string

const (
	PromotionStatusActive    PromotionStatus = "active"
	PromotionStatusCompleted PromotionStatus = "completed"
	PromotionStatusSuspended PromotionStatus = "suspended"
)

// Promotion represents a cohort of students sharing a curriculum track.
// Promotions are archived by status change, never deleted.
type Promotion struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	StartYear     int             `json:"start_year"`
	EndYear       int             `json:"end_year"`
	CoordinatorID int             `json:"coordinator_id"`
	Status        PromotionStatus `json:"status"`
	Capacity      int             `json:"capacity"`
	StudentIDs    []int           `json:"student_ids"`
	CourseIDs     []int           `json:"course_ids"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EnrollmentCount is the number of enrolled students.
func (p *Promotion) EnrollmentCount() int {
	return len(p.StudentIDs)
}

// AvailableSpots is the remaining capacity, never negative.
func (p *Promotion) AvailableSpots() int {
	if spots := p.Capacity - len(p.StudentIDs); spots > 0 {
		return spots
	}
	return 0
}

// HasStudent reports whether the student is already enrolled.
func (p *Promotion) HasStudent(studentID int) bool {
	for _, id := range p.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// HasCourse reports whether the course is already attached.
func (p *Promotion) HasCourse(courseID int) bool {
	for _, id := range p.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
