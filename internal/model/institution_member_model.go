package model

import (
	"time"

	"github.com/google/uuid"
)

type InstitutionMember struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index:idx_member_user_institution,unique"`
	InstitutionId uuid.UUID `gorm:"type:uuid;not null;index:idx_member_user_institution,unique"`
	Role          string    `gorm:"type:varchar(16);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (InstitutionMember) TableName() string {
	return "institution_members"
}
