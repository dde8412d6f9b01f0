package entity

import (
	"time"

	"github.com/google/uuid"
)

type InstitutionMember struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	InstitutionId uuid.UUID
	Role          string
	CreatedAt     time.Time
}
