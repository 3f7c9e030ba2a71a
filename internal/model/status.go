package model

import "time"

// ErrorEntry - ошибка загрузки, которая живёт до ExpiresAt.
type ErrorEntry struct {
	Err       error
	ExpiresAt time.Time
}

// Snapshot - неизменяемая копия состояния загрузки.
type Snapshot struct {
	Running    bool     `json:"running"`
	Percentage float64  `json:"percentage"`
	HasError   bool     `json:"has_error"`
	Errors     []string `json:"errors,omitempty"`
}

