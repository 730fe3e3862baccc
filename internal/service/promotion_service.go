package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
)

// Promotion service errors.
var (
	ErrPromotionFull   = errors.New("promotion has reached its capacity")
	ErrAlreadyEnrolled = errors.New("student is already enrolled")
	ErrNotEnrolled     = errors.New("student is not enrolled")
	ErrInvalidCode     = errors.New("promotion code must be uppercase alphanumeric")
	ErrInvalidYears    = errors.New("end year must be after start year")
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// PromotionService handles cohort business rules: capacity, membership and
// code validity. Promotions are archived by status change, never deleted.
type PromotionService struct {
	promotionRepo *repository.PromotionRepository
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(promotionRepo *repository.PromotionRepository) *PromotionService {
	return &PromotionService{promotionRepo: promotionRepo}
}

// ValidatePromotion checks the invariants shared by create and update.
func ValidatePromotion(p *model.Promotion) error {
	if !codePattern.MatchString(p.Code) {
		return ErrInvalidCode
	}
	if p.EndYear <= p.StartYear {
		return ErrInvalidYears
	}
	return nil
}

// GetByID retrieves a promotion.
func (s *PromotionService) GetByID(ctx context.Context, id int) (*model.Promotion, error) {
	return s.promotionRepo.GetByID(ctx, id)
}

// List retrieves all promotions.
func (s *PromotionService) List(ctx context.Context) ([]model.Promotion, error) {
	return s.promotionRepo.List(ctx)
}

// Create creates a new promotion. Code uniqueness is enforced by the
// database; the handler maps the constraint violation.
func (s *PromotionService) Create(ctx context.Context, p *model.Promotion) error {
	if err := ValidatePromotion(p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = model.PromotionStatusActive
	}
	return s.promotionRepo.Create(ctx, p)
}

// Update modifies a promotion's scalar fields. Capacity may not drop below
// the current enrollment.
func (s *PromotionService) Update(ctx context.Context, p *model.Promotion) error {
	if err := ValidatePromotion(p); err != nil {
		return err
	}
	current, err := s.promotionRepo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Capacity < current.EnrollmentCount() {
		return ErrPromotionFull
	}
	return s.promotionRepo.Update(ctx, p)
}

// AddStudent enrolls a student, guarding capacity and duplicates. It is a
// no-op returning an error when the student is already present or the
// promotion is full; the student set never grows past capacity.
func (s *PromotionService) AddStudent(ctx context.Context, promotionID, studentID int) (*model.Promotion, error) {
	p, err := s.promotionRepo.GetByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	if p.HasStudent(studentID) {
		return nil, ErrAlreadyEnrolled
	}
	if p.AvailableSpots() == 0 {
		return nil, ErrPromotionFull
	}

	added, err := s.promotionRepo.AddStudent(ctx, promotionID, studentID, p.Capacity)
	if err != nil {
		return nil, err
	}
	if !added {
		// Lost the race to another writer: either the seat or the
		// uniqueness went away between read and insert.
		return nil, ErrPromotionFull
	}
	return s.promotionRepo.GetByID(ctx, promotionID)
}

// RemoveStudent withdraws a student from a promotion.
func (s *PromotionService) RemoveStudent(ctx context.Context, promotionID, studentID int) (*model.Promotion, error) {
	if _, err := s.promotionRepo.GetByID(ctx, promotionID); err != nil {
		return nil, err
	}
	removed, err := s.promotionRepo.RemoveStudent(ctx, promotionID, studentID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotEnrolled
	}
	return s.promotionRepo.GetByID(ctx, promotionID)
}

// AddCourse attaches a course to the promotion's curriculum.
func (s *PromotionService) AddCourse(ctx context.Context, promotionID, courseID int) (*model.Promotion, error) {
	if _, err := s.promotionRepo.GetByID(ctx, promotionID); err != nil {
		return nil, err
	}
	added, err := s.promotionRepo.AddCourse(ctx, promotionID, courseID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyEnrolled
	}
	return s.promotionRepo.GetByID(ctx, promotionID)
}

// RemoveCourse detaches a course from the promotion's curriculum.
func (s *PromotionService) RemoveCourse(ctx context.Context, promotionID, courseID int) (*model.Promotion, error) {
	if _, err := s.promotionRepo.GetByID(ctx, promotionID); err != nil {
		return nil, err
	}
	removed, err := s.promotionRepo.RemoveCourse(ctx, promotionID, courseID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotEnrolled
	}
	return s.promotionRepo.GetByID(ctx, promotionID)
}
