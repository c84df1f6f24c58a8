package models

import "time"

type Enquiry struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"fullName"`
	Phone           string    `json:"phone"`
	PropertyType    string    `json:"propertyType"`
	CommercialType  string    `json:"commercialType,omitempty"`
	RentalType      string    `json:"rentalType,omitempty"`
	NumOfRooms      *int      `json:"numOfRooms"`
	NumOfBedRooms   *int      `json:"numOfBedRooms"`
	NumOfToilets    *int      `json:"numOfToilets"`
	LocationDetails string    `json:"locationDetails,omitempty"`
	PlotSize        string    `json:"plotSize,omitempty"`
	Budget          string    `json:"budget,omitempty"`
	Description     string    `json:"description,omitempty"`
	SubmittedAt     time.Time `json:"submittedDate"`
}
