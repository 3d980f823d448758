package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StaffRole is the job a staff member performs. Clients rate staff by role.
type StaffRole string

const (
	StaffRoleOwner     StaffRole = "owner"
	StaffRoleAdmin     StaffRole = "admin"
	StaffRoleOperator  StaffRole = "operator"
	StaffRoleDesainer  StaffRole = "desainer"
	StaffRoleMarketing StaffRole = "marketing"
	StaffRoleKasir     StaffRole = "kasir"
)

// String returns the string representation of the StaffRole.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid checks if the StaffRole is one of the known roles.
func (r StaffRole) IsValid() bool {
	switch r {
	case StaffRoleOwner, StaffRoleAdmin, StaffRoleOperator, StaffRoleDesainer, StaffRoleMarketing, StaffRoleKasir:
		return true
	default:
		return false
	}
}

// IsOrderScoped reports whether the role is assigned per order item rather than shop-wide.
func (r StaffRole) IsOrderScoped() bool {
	switch r {
	case StaffRoleAdmin, StaffRoleDesainer, StaffRoleOperator:
		return true
	default:
		return false
	}
}

// ParseStaffRole converts user input into a StaffRole, ignoring case and surrounding spaces.
func ParseStaffRole(s string) (StaffRole, bool) {
	role := StaffRole(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", false
	}

	return role, true
}

// OrderScopedRoles lists the roles an order needs rated before it is considered fully rated.
func OrderScopedRoles() []StaffRole {
	return []StaffRole{StaffRoleAdmin, StaffRoleDesainer, StaffRoleOperator}
}

// Staff is an employee whose work clients rate. Rating always equals
// RatingTotal / RatingCount, or 0 when nobody has rated yet.
type Staff struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Role        StaffRole `json:"role"`
	RatingCount int64     `json:"rating_count"`
	RatingTotal int64     `json:"rating_total"`
	Rating      float64   `json:"rating"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplyRating folds a new score into the aggregate. previous is the score this client gave
// for the same order before, or nil for a first rating.
func (s *Staff) ApplyRating(previous *int, score int) {
	if previous == nil {
		s.RatingCount++
		s.RatingTotal += int64(score)
	} else {
		s.RatingTotal += int64(score - *previous)
	}
	s.Rating = AverageRating(s.RatingTotal, s.RatingCount)
}

// AverageRating divides total by count, returning 0 for an empty aggregate.
func AverageRating(total, count int64) float64 {
	if count <= 0 {
		return 0
	}

	return float64(total) / float64(count)
}
