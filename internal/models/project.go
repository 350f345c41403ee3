package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	BaseModel
	Title              string         `gorm:"not null" json:"title"`
	Description        string         `gorm:"not null" json:"description"`
	AcceptanceCriteria string         `gorm:"not null" json:"acceptance_criteria"`
	Members            datatypes.JSON `json:"-"`
	Deadline           time.Time      `gorm:"not null;index" json:"deadline"`
	ClientDetails      string         `json:"client_details,omitempty"`
	Status             ProjectStatus  `gorm:"type:varchar(30);not null;default:'new';index" json:"status"`
	AssigneeID         string         `gorm:"not null;index" json:"assignee_id"`
	CreatedByID        string         `gorm:"not null;index" json:"created_by_id"`
}

// MemberIDs decodes the stored member list.
func (p *Project) MemberIDs() []string {
	return decodeIDList(p.Members)
}

// SetMemberIDs encodes the member list for storage.
func (p *Project) SetMemberIDs(ids []string) {
	p.Members = encodeIDList(ids)
}

func decodeIDList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

func encodeIDList(ids []string) datatypes.JSON {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	return raw
}
