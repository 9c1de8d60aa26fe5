package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a text entry written by exactly one author and optionally filed
// under one group. PubDate is assigned once on creation and is the feed sort key.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"index;not null" json:"author_id"`
	GroupID  *uint     `gorm:"index" json:"group_id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Image    string    `gorm:"size:512" json:"image,omitempty"`
	PubDate  time.Time `gorm:"index;not null" json:"pub_date"`
	User     User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group,omitempty"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// BeforeCreate stamps the publication date in UTC unless the caller already set one.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now().UTC()
	} else {
		p.PubDate = p.PubDate.UTC()
	}
	return nil
}
