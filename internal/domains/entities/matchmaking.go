package entities

import "time"

type QueueEntry struct {
	PlayerId    string
	Username    string
	Rating      int
	TimeControl int
	Increment   int
	QueuedAt    time.Time
}

type Invitation struct {
	Code            string    `json:"code"`
	CreatorId       string    `json:"creatorId"`
	CreatorUsername string    `json:"creatorUsername"`
	CreatorRating   int       `json:"creatorRating"`
	TimeControl     int       `json:"timeControl"`
	Increment       int       `json:"increment"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

func (inv Invitation) Expired(now time.Time) bool {
	return !now.Before(inv.ExpiresAt)
}
