package model

import "time"

// Selections maps a startup id to the category the voter assigned to it.
type Selections map[string]VoteCategory

func (s Selections) Count(category VoteCategory) int {
	n := 0
	for _, c := range s {
		if c == category {
			n++
		}
	}
	return n
}

func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for id, c := range s {
		out[id] = c
	}
	return out
}

type Ballot struct {
	ID             string     `gorm:"primaryKey"`
	VoterName      string     `gorm:"not null"`
	VoterNameLower string     `gorm:"not null;uniqueIndex"`
	Selections     Selections `gorm:"serializer:json;not null"`
	Timestamp      time.Time  `gorm:"not null"`
}
