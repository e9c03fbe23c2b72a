package model

import (
	"time"
)

type Startup struct {
	ID              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Name            string  `gorm:"not null;index"`
	Website         *string `gorm:"column:website"`
	FounderLinkedIn *string `gorm:"column:founder_linkedin"`
	DeckURL         *string `gorm:"column:deck_url"`
}

// StartupFields carries the editable attributes of a startup. A nil link
// means the link is absent.
type StartupFields struct {
	Name            string
	Website         *string
	FounderLinkedIn *string
	DeckURL         *string
}

func (s Startup) Fields() StartupFields {
	return StartupFields{
		Name:            s.Name,
		Website:         s.Website,
		FounderLinkedIn: s.FounderLinkedIn,
		DeckURL:         s.DeckURL,
	}
}

func (s *Startup) Apply(fields StartupFields) {
	s.Name = fields.Name
	s.Website = fields.Website
	s.FounderLinkedIn = fields.FounderLinkedIn
	s.DeckURL = fields.DeckURL
}
