// Package domain defines the persistence models for vocabulary records and
// their review schedule. These types are mapped with GORM and form the core
// data layer of the vocabulary review service.
package domain

import "time"

// Vocabulary is a single English/Vietnamese word pair together with its
// review schedule.
//
// Fields:
//   - ID: UUIDv7 primary key (char(36)), time-ordered and immutable.
//   - English / Vietnamese: required, non-empty terms.
//   - IPA, Example, Collection, PartOfSpeech: optional, default "".
//   - Step: difficulty label chosen at the last review ("0", "7-15", ...).
//   - Target: next review date as YYYY-MM-DD (indexed for due queries).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM (not exposed).
//
// Step and Target are always written together; see package schedule.
type Vocabulary struct {
	ID           string    `json:"id"           gorm:"type:char(36);primaryKey"`
	English      string    `json:"english"      gorm:"type:text;not null"`
	Vietnamese   string    `json:"vietnamese"   gorm:"type:text;not null"`
	IPA          string    `json:"ipa"          gorm:"column:ipa;type:text;not null;default:''"`
	Example      string    `json:"example"      gorm:"type:text;not null;default:''"`
	Collection   string    `json:"collection"   gorm:"type:varchar(255);not null;default:'';index:idx_vocab_collection"`
	PartOfSpeech string    `json:"partOfSpeech" gorm:"column:part_of_speech;type:varchar(64);not null;default:''"`
	Step         string    `json:"step"         gorm:"type:varchar(16);not null"`
	Target       string    `json:"target"       gorm:"type:varchar(10);not null;index:idx_vocab_target"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName returns the database table name for Vocabulary.
func (Vocabulary) TableName() string { return "vocabularies" }
