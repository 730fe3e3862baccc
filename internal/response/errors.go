package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication / Authorization ────────────────────────────────
	ErrTokenRequired    ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid     ErrCode = "TOKEN_INVALID"
	ErrTokenExpired     ErrCode = "TOKEN_EXPIRED"
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly  ErrCode = "ADMIN_ACCESS_ONLY"
	ErrStaffAccessOnly  ErrCode = "STAFF_ACCESS_ONLY"
	ErrNotOrganizer     ErrCode = "NOT_ORGANIZER"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrInvalidDateRange ErrCode = "INVALID_DATE_RANGE"
	ErrInvalidPaging    ErrCode = "INVALID_PAGINATION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Planning ──────────────────────────────────────────────────────
	ErrScheduleConflict ErrCode = "SCHEDULE_CONFLICT"
	ErrNoSchedule       ErrCode = "NO_SCHEDULE_CONFIGURED"
	ErrBadRecurrence    ErrCode = "INVALID_RECURRENCE_RULE"
	ErrEventNotEditable ErrCode = "EVENT_NOT_EDITABLE"

	// ─── Promotions ────────────────────────────────────────────────────
	ErrPromotionFull    ErrCode = "PROMOTION_FULL"
	ErrAlreadyEnrolled  ErrCode = "ALREADY_ENROLLED"
	ErrNotEnrolled      ErrCode = "NOT_ENROLLED"
	ErrDuplicateCode    ErrCode = "DUPLICATE_CODE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrStaffAccessOnly:
		return "This resource is restricted to staff members."
	case ErrNotOrganizer:
		return "Only the event organizer may perform this action."
	case ErrPermissionDenied:
		return "Permission denied."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidDateRange:
		return "End date must be after start date."
	case ErrInvalidPaging:
		return "Invalid pagination parameters: page must be >= 1 and limit between 1 and 100."

	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "Resource cannot be removed because other data still depends on it."
	case ErrActionForbidden:
		return "This action is not allowed."

	case ErrScheduleConflict:
		return "Conflict detected: the requested time range overlaps existing events."
	case ErrNoSchedule:
		return "No schedule configured for this user."
	case ErrBadRecurrence:
		return "Invalid recurrence rule: frequency must be daily, weekly or monthly."
	case ErrEventNotEditable:
		return "Completed or cancelled events cannot be modified."

	case ErrPromotionFull:
		return "Promotion has reached its capacity."
	case ErrAlreadyEnrolled:
		return "Student is already enrolled in this promotion."
	case ErrNotEnrolled:
		return "Student is not enrolled in this promotion."
	case ErrDuplicateCode:
		return "A promotion with this code already exists."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
