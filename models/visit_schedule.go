package models

import "time"

type VisitSchedule struct {
	ID              int64      `json:"id"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email,omitempty"`
	PhoneNumber     string     `json:"phoneNumber"`
	VisitDate       *time.Time `json:"visitDate"`
	VisitTime       string     `json:"visitTime,omitempty"`
	PropertyName    string     `json:"propertyName,omitempty"`
	LocationDetails string     `json:"locationDetails,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
