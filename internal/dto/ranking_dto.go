package dto

import (
	"github.com/google/uuid"
)

type RankingApplyRequest struct {
	Action      string             `json:"action" validate:"required,oneof=refresh apply_flags"`
	CourseId    uuid.UUID          `json:"course_id" validate:"required"`
	SessionId   *uuid.UUID         `json:"session_id,omitempty"`
	IntakeLimit *int               `json:"intake_limit,omitempty" validate:"omitempty,gt=0"`
	Thresholds  *RankingThresholds `json:"thresholds,omitempty"`
}

type RankingThresholds struct {
	AutoAccept  float64 `json:"auto_accept" validate:"gt=0"`
	Conditional float64 `json:"conditional" validate:"gt=0"`
	Waitlist    float64 `json:"waitlist" validate:"gt=0"`
}

type RankingApplyResponse struct {
	SessionId        *uuid.UUID `json:"session_id,omitempty"`
	CourseId         uuid.UUID  `json:"course_id"`
	AutoAccept       int        `json:"auto_accept"`
	Conditional      int        `json:"conditional"`
	Waitlist         int        `json:"waitlist"`
	RejectionFlagged int        `json:"rejection_flagged"`
	Total            int        `json:"total"`
}
