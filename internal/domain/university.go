package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type University struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name              string         `json:"name" gorm:"uniqueIndex;not null"`
	Country           string         `json:"country" gorm:"index;not null"`
	State             *string        `json:"state,omitempty"`
	City              string         `json:"city" gorm:"not null"`
	Ranking           *int           `json:"ranking,omitempty"`
	AcceptanceRate    *float64       `json:"acceptanceRate,omitempty"`
	ApplicationSystem string         `json:"applicationSystem"`
	TuitionInState    *int           `json:"tuitionInState,omitempty"`
	TuitionOutState   *int           `json:"tuitionOutState,omitempty"`
	ApplicationFee    *int           `json:"applicationFee,omitempty"`
	MajorsOffered     datatypes.JSON `json:"majorsOffered" gorm:"type:jsonb"`
	Website           string         `json:"website,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Majors decodes MajorsOffered, returning nil when the column is empty or malformed.
func (u *University) Majors() []string {
	if len(u.MajorsOffered) == 0 {
		return nil
	}
	var majors []string
	if err := json.Unmarshal(u.MajorsOffered, &majors); err != nil {
		return nil
	}
	return majors
}

// SetMajors encodes the given majors into MajorsOffered.
func (u *University) SetMajors(majors []string) {
	if majors == nil {
		majors = []string{}
	}
	data, _ := json.Marshal(majors)
	u.MajorsOffered = datatypes.JSON(data)
}

// UniversityFilter narrows a university search. Zero values mean "no constraint".
type UniversityFilter struct {
	Query              string
	Countries          []string
	States             []string
	Majors             []string
	ApplicationSystems []string
	MinAcceptance      *float64
	MaxAcceptance      *float64
	MinRanking         *int
	MaxRanking         *int
	Limit              int
}

// UniversityFilterOptions lists the distinct values a client can filter on.
type UniversityFilterOptions struct {
	Countries          []string `json:"countries"`
	States             []string `json:"states"`
	Majors             []string `json:"majors"`
	ApplicationSystems []string `json:"applicationSystems"`
}
