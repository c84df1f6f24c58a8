package models

import (
	"strings"
	"time"
)

type PropertyType string

const (
	PropertyTypeLand       PropertyType = "Land"
	PropertyTypeCommercial PropertyType = "Commercial"
	PropertyTypeHouse      PropertyType = "House"
	PropertyTypeVilla      PropertyType = "Villa"
	PropertyTypeRental     PropertyType = "Rental"
	PropertyTypeFarmLand   PropertyType = "Farm Land"
	PropertyTypeIndustrial PropertyType = "Industrial"
)

type Property struct {
	ID              int64        `json:"id"`
	PropertyType    PropertyType `json:"propertyType"`
	FullName        string       `json:"fullName"`
	PhoneNumber     string       `json:"phoneNumber"`
	PropertyName    string       `json:"propertyName,omitempty"`
	CommercialType  string       `json:"commercialType,omitempty"`
	RentalType      string       `json:"rentalType,omitempty"`
	NumOfRooms      *int         `json:"numOfRooms"`
	NumOfBedRooms   *int         `json:"numOfBedRooms"`
	NumOfToilets    *int         `json:"numOfToilets"`
	NumOfVillaRooms *int         `json:"numOfVillaRooms"`
	LocationDetails string       `json:"locationDetails"`
	Description     string       `json:"description,omitempty"`
	PlotSize        string       `json:"plotSize"`
	Budget          string       `json:"budget"`
	ImageURLs       []string     `json:"imageUrls"`
	UpdatedAt       time.Time    `json:"updatedDate"`
}

// Measure is a "quantity unit" pair such as "12 Cent" or "45 Lakhs".
type Measure struct {
	Quantity string
	Unit     string
}

func ParseMeasure(s string) Measure {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return Measure{}
	case 1:
		return Measure{Quantity: fields[0]}
	default:
		return Measure{Quantity: fields[0], Unit: strings.Join(fields[1:], " ")}
	}
}

func (m Measure) String() string {
	if m.Unit == "" {
		return m.Quantity
	}
	return m.Quantity + " " + m.Unit
}
