package entity

import (
	"time"
)

// Mapping rule origins.
const (
	MappingManual      = "MANUAL"
	MappingUserLearned = "USER_LEARNED"
	MappingAutoLearned = "AUTO_LEARNED"
)

// ItemMapping is a learned or curated rule linking a take-off code to a
// warehouse material code. The matching service keeps these behind a
// read-through cache and invalidates it on every write.
type ItemMapping struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	SourceCode string `json:"source_code" gorm:"size:100;not null;index;uniqueIndex:uq_mapping_pair,priority:1"`
	SourceSize string `json:"source_size" gorm:"size:50;uniqueIndex:uq_mapping_pair,priority:2"`
	TargetCode string `json:"target_code" gorm:"size:100;not null;index;uniqueIndex:uq_mapping_pair,priority:3"`
	TargetSize string `json:"target_size" gorm:"size:50;uniqueIndex:uq_mapping_pair,priority:4"`

	MappingType     string  `json:"mapping_type" gorm:"size:50;default:MANUAL"`
	ConfidenceScore float64 `json:"confidence_score" gorm:"type:decimal(5,4);default:1"`

	UsageCount int        `json:"usage_count" gorm:"default:0"`
	LastUsed   *time.Time `json:"last_used"`

	CreatedBy string    `json:"created_by" gorm:"size:100"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ItemMapping) TableName() string {
	return "item_mappings"
}
