package dto

import "time"

type CreateTrackableRequest struct {
	Name string `json:"name"`
}

type ReportPositionRequest struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Altitude   *float64   `json:"altitude,omitempty"`
	ReportedAt *time.Time `json:"reported_at,omitempty"`
}
