package models

import (
	"fmt"
	"time"
)

type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusContacted SubmissionStatus = "contacted"
	SubmissionStatusQuoted    SubmissionStatus = "quoted"
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusCancelled SubmissionStatus = "cancelled"
)

// SubmissionStatuses lists every accepted status, in workflow order.
var SubmissionStatuses = []SubmissionStatus{
	SubmissionStatusPending,
	SubmissionStatusContacted,
	SubmissionStatusQuoted,
	SubmissionStatusCompleted,
	SubmissionStatusCancelled,
}

func (s SubmissionStatus) Valid() bool {
	for _, known := range SubmissionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func ParseSubmissionStatus(v string) (SubmissionStatus, error) {
	s := SubmissionStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid submission status %q", v)
	}
	return s, nil
}

// Submission is a customer inquiry received through the contact form.
type Submission struct {
	ID string `bson:"_id" json:"id"`

	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	Phone       string `bson:"phone" json:"phone"`
	ProjectType string `bson:"projectType" json:"projectType"`
	Description string `bson:"description" json:"description"`

	Budget   string `bson:"budget" json:"budget"`
	Timeline string `bson:"timeline" json:"timeline"`
	Language string `bson:"language" json:"language"`

	Images []string `bson:"images" json:"images"`
	Files  []string `bson:"files" json:"files"`

	Status SubmissionStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
