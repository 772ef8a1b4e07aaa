package dto

// CreateSubmissionDTO is the contact form payload. Required fields are
// checked by the handler so the response can name the first missing one.
// A client-sent "status" is not part of the payload and is dropped.
type CreateSubmissionDTO struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ProjectType string `json:"projectType"`
	Description string `json:"description"`

	Budget   string `json:"budget"`
	Timeline string `json:"timeline"`
	Language string `json:"language"`

	Images      []string `json:"images"`
	Files       []string `json:"files"`
	Attachments []string `json:"attachments"`
}

type UpdateSubmissionStatusDTO struct {
	Status string `json:"status" binding:"required"`
}
