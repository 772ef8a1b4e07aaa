package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cncdesign/cncbackend/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type submissionRow struct {
	ID          string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"not null"`
	Email       string         `gorm:"not null;index"`
	Phone       string         `gorm:"not null"`
	ProjectType string         `gorm:"not null"`
	Description string         `gorm:"type:text;not null"`
	Budget      string         `gorm:"not null;default:''"`
	Timeline    string         `gorm:"not null;default:''"`
	Language    string         `gorm:"not null;default:'en'"`
	Images      datatypes.JSON `gorm:"type:jsonb;not null"`
	Files       datatypes.JSON `gorm:"type:jsonb;not null"`
	Status      string         `gorm:"not null;default:'pending';index;check:status IN ('pending','contacted','quoted','completed','cancelled')"`
	CreatedAt   time.Time      `gorm:"index"`
	UpdatedAt   time.Time
}

func (submissionRow) TableName() string { return "submissions" }

type projectRow struct {
	ID            string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TitleEn       string         `gorm:"not null"`
	TitleAm       string         `gorm:"not null"`
	DescriptionEn string         `gorm:"type:text;not null"`
	DescriptionAm string         `gorm:"type:text;not null"`
	Category      string         `gorm:"not null;index"`
	Materials     datatypes.JSON `gorm:"type:jsonb;not null"`
	Dimensions    datatypes.JSON `gorm:"type:jsonb"`
	Images        datatypes.JSON `gorm:"type:jsonb;not null"`
	Featured      bool           `gorm:"not null;default:false"`
	CreatedAt     time.Time      `gorm:"index"`
	UpdatedAt     time.Time
}

func (projectRow) TableName() string { return "projects" }

type userRow struct {
	ID           string `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;check:role IN ('ADMIN')"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

// AutoMigrateGorm creates or updates the tables used by the gorm stores.
func AutoMigrateGorm(db *gorm.DB) error {
	return db.AutoMigrate(&submissionRow{}, &projectRow{}, &userRow{})
}

// NewGormStores wires the Postgres-backed stores.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Submissions: &GormSubmissionStore{db: db},
		Projects:    &GormProjectStore{db: db},
		Users:       &GormUserStore{db: db},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func paginate(q *gorm.DB, opts ListOptions) *gorm.DB {
	if opts.Skip > 0 {
		q = q.Offset(int(opts.Skip))
	}
	if opts.Limit > 0 {
		q = q.Limit(int(opts.Limit))
	}
	return q
}

// knownID filters out ids Postgres would refuse to compare against a uuid
// column; such ids can never match a row.
func knownID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func encodeStrings(v []string) (datatypes.JSON, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return datatypes.JSON(b), err
}

func decodeStrings(raw datatypes.JSON) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

type GormSubmissionStore struct {
	db *gorm.DB
}

func (s *GormSubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	row, err := toSubmissionRow(sub)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	sub.ID = row.ID
	sub.CreatedAt = row.CreatedAt
	sub.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *GormSubmissionStore) List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	var rows []submissionRow
	if err := paginate(q, f.ListOptions).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}

	items := make([]models.Submission, 0, len(rows))
	for i := range rows {
		sub, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *sub)
	}
	return items, nil
}

func (s *GormSubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	var row submissionRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find submission %s: %w", id, err)
	}
	return row.toModel()
}

func (s *GormSubmissionStore) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&submissionRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("update submission %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *GormSubmissionStore) Delete(ctx context.Context, id string) error {
	if !knownID(id) {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Delete(&submissionRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete submission %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toSubmissionRow(sub *models.Submission) (*submissionRow, error) {
	images, err := encodeStrings(sub.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	files, err := encodeStrings(sub.Files)
	if err != nil {
		return nil, fmt.Errorf("encode files: %w", err)
	}
	return &submissionRow{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		ProjectType: sub.ProjectType,
		Description: sub.Description,
		Budget:      sub.Budget,
		Timeline:    sub.Timeline,
		Language:    sub.Language,
		Images:      images,
		Files:       files,
		Status:      string(sub.Status),
	}, nil
}

func (r *submissionRow) toModel() (*models.Submission, error) {
	images, err := decodeStrings(r.Images)
	if err != nil {
		return nil, fmt.Errorf("decode images of submission %s: %w", r.ID, err)
	}
	files, err := decodeStrings(r.Files)
	if err != nil {
		return nil, fmt.Errorf("decode files of submission %s: %w", r.ID, err)
	}
	return &models.Submission{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		ProjectType: r.ProjectType,
		Description: r.Description,
		Budget:      r.Budget,
		Timeline:    r.Timeline,
		Language:    r.Language,
		Images:      images,
		Files:       files,
		Status:      models.SubmissionStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

type GormProjectStore struct {
	db *gorm.DB
}

func (s *GormProjectStore) Create(ctx context.Context, p *models.Project) error {
	row, err := toProjectRow(p)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *GormProjectStore) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	var rows []projectRow
	if err := paginate(q, f.ListOptions).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}

	items := make([]models.Project, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, nil
}

func (s *GormProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	var row projectRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return row.toModel()
}

func (s *GormProjectStore) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	if !knownID(id) {
		return nil, ErrNotFound
	}
	set := map[string]any{"updated_at": time.Now().UTC()}
	if patch.TitleEn != nil {
		set["title_en"] = *patch.TitleEn
	}
	if patch.TitleAm != nil {
		set["title_am"] = *patch.TitleAm
	}
	if patch.DescriptionEn != nil {
		set["description_en"] = *patch.DescriptionEn
	}
	if patch.DescriptionAm != nil {
		set["description_am"] = *patch.DescriptionAm
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Materials != nil {
		v, err := encodeStrings(*patch.Materials)
		if err != nil {
			return nil, fmt.Errorf("encode materials: %w", err)
		}
		set["materials"] = v
	}
	if patch.Images != nil {
		v, err := encodeStrings(*patch.Images)
		if err != nil {
			return nil, fmt.Errorf("encode images: %w", err)
		}
		set["images"] = v
	}
	if patch.Dimensions != nil {
		b, err := json.Marshal(patch.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("encode dimensions: %w", err)
		}
		set["dimensions"] = datatypes.JSON(b)
	}
	if patch.Featured != nil {
		set["featured"] = *patch.Featured
	}

	res := s.db.WithContext(ctx).Model(&projectRow{}).Where("id = ?", id).Updates(set)
	if res.Error != nil {
		return nil, fmt.Errorf("update project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *GormProjectStore) Delete(ctx context.Context, id string) error {
	if !knownID(id) {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Delete(&projectRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toProjectRow(p *models.Project) (*projectRow, error) {
	materials, err := encodeStrings(p.Materials)
	if err != nil {
		return nil, fmt.Errorf("encode materials: %w", err)
	}
	images, err := encodeStrings(p.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	row := &projectRow{
		TitleEn:       p.TitleEn,
		TitleAm:       p.TitleAm,
		DescriptionEn: p.DescriptionEn,
		DescriptionAm: p.DescriptionAm,
		Category:      p.Category,
		Materials:     materials,
		Images:        images,
		Featured:      p.Featured,
	}
	if p.Dimensions != nil {
		b, err := json.Marshal(p.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("encode dimensions: %w", err)
		}
		row.Dimensions = datatypes.JSON(b)
	}
	return row, nil
}

func (r *projectRow) toModel() (*models.Project, error) {
	materials, err := decodeStrings(r.Materials)
	if err != nil {
		return nil, fmt.Errorf("decode materials of project %s: %w", r.ID, err)
	}
	images, err := decodeStrings(r.Images)
	if err != nil {
		return nil, fmt.Errorf("decode images of project %s: %w", r.ID, err)
	}
	p := &models.Project{
		ID:            r.ID,
		TitleEn:       r.TitleEn,
		TitleAm:       r.TitleAm,
		DescriptionEn: r.DescriptionEn,
		DescriptionAm: r.DescriptionAm,
		Category:      r.Category,
		Materials:     materials,
		Images:        images,
		Featured:      r.Featured,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if len(r.Dimensions) > 0 && string(r.Dimensions) != "null" {
		var d models.Dimensions
		if err := json.Unmarshal(r.Dimensions, &d); err != nil {
			return nil, fmt.Errorf("decode dimensions of project %s: %w", r.ID, err)
		}
		p.Dimensions = &d
	}
	return p, nil
}

type GormUserStore struct {
	db *gorm.DB
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &models.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         models.Role(row.Role),
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (s *GormUserStore) EnsureUser(ctx context.Context, u *models.User) (bool, error) {
	row := userRow{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
	}
	res := s.db.WithContext(ctx).Where(userRow{Email: u.Email}).FirstOrCreate(&row)
	if res.Error != nil {
		return false, fmt.Errorf("upsert user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return true, nil
}

func (s *GormUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("email = ?", email).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
