package domain

import "time"

// Detection is a single posture classification produced by the detector.
type Detection struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Posture   string    `json:"posture" db:"posture"`
	Angle     float64   `json:"angle" db:"angle"`
	Timestamp time.Time `json:"timestamp" db:"recorded_at"`
}
