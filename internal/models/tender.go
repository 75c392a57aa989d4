package models

import "time"

type TenderStatus string

const (
	TenderUpcoming TenderStatus = "Upcoming"
	TenderOpen     TenderStatus = "Open"
	TenderClosed   TenderStatus = "Closed"
)

type Tender struct {
	Id          string       `json:"id"`
	DemandId    string       `json:"demandId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	OpeningDate time.Time    `json:"openingDate"`
	ClosingDate time.Time    `json:"closingDate"`
	CreatedBy   string       `json:"createdBy"`
	Status      TenderStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"-"`
}

// StatusAt derives the tender status from its bidding window. Both window
// bounds are inclusive.
func (t Tender) StatusAt(now time.Time) TenderStatus {
	switch {
	case now.Before(t.OpeningDate):
		return TenderUpcoming
	case now.After(t.ClosingDate):
		return TenderClosed
	default:
		return TenderOpen
	}
}
