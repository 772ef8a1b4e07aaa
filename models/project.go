package models

import "time"

// Dimensions is kept as free text; workshops quote in whatever unit the client uses.
type Dimensions struct {
	Length string `bson:"length" json:"length"`
	Width  string `bson:"width" json:"width"`
	Height string `bson:"height" json:"height"`
	Unit   string `bson:"unit" json:"unit"`
}

type Project struct {
	ID string `bson:"_id" json:"id"`

	TitleEn       string `bson:"titleEn" json:"titleEn"`
	TitleAm       string `bson:"titleAm" json:"titleAm"`
	DescriptionEn string `bson:"descriptionEn" json:"descriptionEn"`
	DescriptionAm string `bson:"descriptionAm" json:"descriptionAm"`

	Category   string      `bson:"category" json:"category"`
	Materials  []string    `bson:"materials" json:"materials"`
	Dimensions *Dimensions `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Images     []string    `bson:"images" json:"images"`
	Featured   bool        `bson:"featured" json:"featured"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProjectPatch carries the fields of a partial project update. Nil means unchanged.
type ProjectPatch struct {
	TitleEn       *string
	TitleAm       *string
	DescriptionEn *string
	DescriptionAm *string
	Category      *string
	Materials     *[]string
	Dimensions    *Dimensions
	Images        *[]string
	Featured      *bool
}

func (p ProjectPatch) Empty() bool {
	return p.TitleEn == nil && p.TitleAm == nil &&
		p.DescriptionEn == nil && p.DescriptionAm == nil &&
		p.Category == nil && p.Materials == nil && p.Dimensions == nil &&
		p.Images == nil && p.Featured == nil
}

// Apply copies every set field of the patch onto dst.
func (p ProjectPatch) Apply(dst *Project) {
	if p.TitleEn != nil {
		dst.TitleEn = *p.TitleEn
	}
	if p.TitleAm != nil {
		dst.TitleAm = *p.TitleAm
	}
	if p.DescriptionEn != nil {
		dst.DescriptionEn = *p.DescriptionEn
	}
	if p.DescriptionAm != nil {
		dst.DescriptionAm = *p.DescriptionAm
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Materials != nil {
		dst.Materials = append([]string(nil), (*p.Materials)...)
	}
	if p.Dimensions != nil {
		d := *p.Dimensions
		dst.Dimensions = &d
	}
	if p.Images != nil {
		dst.Images = append([]string(nil), (*p.Images)...)
	}
	if p.Featured != nil {
		dst.Featured = *p.Featured
	}
}
