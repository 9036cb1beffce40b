package models

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

const (
	ImprovementBetter = "better"
	ImprovementSame   = "same"
	ImprovementWorse  = "worse"
)

// CheckInInterval returns the check-in cadence as a duration, or false
// for an unknown frequency.
func CheckInInterval(frequency string) (time.Duration, bool) {
	switch frequency {
	case FrequencyDaily:
		return 24 * time.Hour, true
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

func ValidImprovement(improvement string) bool {
	switch improvement {
	case ImprovementBetter, ImprovementSame, ImprovementWorse:
		return true
	default:
		return false
	}
}

// MonitoredCondition is one user's opt-in longitudinal tracking record
// for a diagnosed ailment. The last-check-in columns stay null until
// the first progress entry lands.
type MonitoredCondition struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"not null;index" json:"user_id"`
	DiseaseName            string     `gorm:"not null" json:"disease_name"`
	StartDate              time.Time  `gorm:"not null" json:"start_date"`
	Status                 string     `gorm:"not null;default:active;index" json:"status"`
	InitialImage           string     `gorm:"not null" json:"initial_image"`
	InitialConfidence      float64    `gorm:"not null" json:"initial_confidence"`
	CheckInFrequency       string     `gorm:"not null;default:daily" json:"check_in_frequency"`
	NextCheckInDue         time.Time  `gorm:"not null" json:"next_check_in_due"`
	Notes                  string     `json:"notes"`
	LastCheckInAt          *time.Time `json:"last_check_in_at,omitempty"`
	LastCheckInConfidence  *float64   `json:"last_check_in_confidence,omitempty"`
	LastCheckInImprovement string     `json:"last_check_in_improvement,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// ProgressEntry is one check-in against a monitored condition.
// Append-only; entries are stored independently and joined to their
// condition by foreign key.
type ProgressEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	ConditionID uint      `gorm:"not null;index" json:"condition_id"`
	ImageURL    string    `gorm:"not null" json:"image_url"`
	RecordedAt  time.Time `gorm:"not null" json:"recorded_at"`
	Confidence  float64   `gorm:"not null" json:"confidence"`
	Notes       string    `json:"notes"`
	Symptoms    []string  `gorm:"serializer:json" json:"symptoms"`
	Improvement string    `gorm:"not null;default:same" json:"improvement"`
	Insights    Insights  `gorm:"serializer:json" json:"ai_insights"`
	CreatedAt   time.Time `json:"created_at"`
}
