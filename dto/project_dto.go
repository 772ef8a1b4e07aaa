package dto

import (
	"bytes"
	"encoding/json"

	"github.com/cncdesign/cncbackend/models"
)

type CreateProjectDTO struct {
	TitleEn       string             `json:"titleEn"`
	TitleAm       string             `json:"titleAm"`
	DescriptionEn string             `json:"descriptionEn"`
	DescriptionAm string             `json:"descriptionAm"`
	Category      string             `json:"category"`
	Materials     []string           `json:"materials"`
	Dimensions    *models.Dimensions `json:"dimensions"`
	Images        []string           `json:"images"`
	// Featured is kept raw: only a literal JSON true marks a project featured.
	Featured json.RawMessage `json:"featured"`
}

func (d CreateProjectDTO) IsFeatured() bool {
	return bytes.Equal(bytes.TrimSpace(d.Featured), []byte("true"))
}

type UpdateProjectDTO struct {
	TitleEn       *string            `json:"titleEn,omitempty"`
	TitleAm       *string            `json:"titleAm,omitempty"`
	DescriptionEn *string            `json:"descriptionEn,omitempty"`
	DescriptionAm *string            `json:"descriptionAm,omitempty"`
	Category      *string            `json:"category,omitempty"`
	Materials     *[]string          `json:"materials,omitempty"`
	Dimensions    *models.Dimensions `json:"dimensions,omitempty"`
	Images        *[]string          `json:"images,omitempty"`
	Featured      *bool              `json:"featured,omitempty"`
}

func (d UpdateProjectDTO) ToPatch() models.ProjectPatch {
	return models.ProjectPatch{
		TitleEn:       d.TitleEn,
		TitleAm:       d.TitleAm,
		DescriptionEn: d.DescriptionEn,
		DescriptionAm: d.DescriptionAm,
		Category:      d.Category,
		Materials:     d.Materials,
		Dimensions:    d.Dimensions,
		Images:        d.Images,
		Featured:      d.Featured,
	}
}
