package models

import "time"

type City struct {
	ID                  int64     `json:"id"`
	CityName            string    `json:"cityName"`
	AvailableProperties int       `json:"availableProperties"`
	ImageURL            string    `json:"imageUrl"`
	UpdatedAt           time.Time `json:"updatedDate"`
}
