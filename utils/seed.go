package utils

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cncdesign/cncbackend/models"
	"github.com/cncdesign/cncbackend/repository"
)

func SeedAdminUser(ctx context.Context, users repository.UserStore, email, pass string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return fmt.Errorf("missing ADMIN_EMAIL or ADMIN_PASSWORD env vars")
	}

	hash, err := HashPassword(pass)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := users.EnsureUser(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if created {
		slog.Info("admin user seeded", "email", email)
	} else {
		slog.Info("admin user already exists", "email", email)
	}
	return nil
}

// SampleProjects is the showcase catalog used for fresh installs.
func SampleProjects() []models.Project {
	return []models.Project{
		{
			TitleEn:       "Modern Oak Dining Table",
			TitleAm:       "ዘመናዊ ኦክ የመመገቢያ ጠረጴዛ",
			DescriptionEn: "Handcrafted solid oak dining table with CNC precision joints",
			DescriptionAm: "በእጅ የተሠራ ጠንካራ ኦክ የመመገቢያ ጠረጴዛ በCNC ትክክለኛ መገጣጠሚያዎች",
			Category:      "living",
			Materials:     []string{"Solid Oak", "Steel Legs", "Polyurethane Finish"},
			Dimensions:    &models.Dimensions{Length: "180", Width: "90", Height: "75", Unit: "cm"},
			Images:        []string{"/projects/dining-table-1.jpg", "/projects/dining-table-2.jpg"},
			Featured:      true,
		},
		{
			TitleEn:       "Minimalist Bed Frame",
			TitleAm:       "ሚኒማሊስት የአልጋ ፍሬም",
			DescriptionEn: "CNC-cut minimalist bed frame with integrated lighting",
			DescriptionAm: "በCNC የተቆረጠ ሚኒማሊስት የአልጋ ፍሬም ከተዋሃደ መብራት ጋር",
			Category:      "bedroom",
			Materials:     []string{"Birch Plywood", "LED Strips", "Matte Finish"},
			Dimensions:    &models.Dimensions{Length: "200", Width: "180", Height: "40", Unit: "cm"},
			Images:        []string{"/projects/bed-frame-1.jpg"},
			Featured:      true,
		},
	}
}

// SeedSampleProjects fills an empty catalog with SampleProjects. A catalog
// that already holds projects is left untouched.
func SeedSampleProjects(ctx context.Context, projects repository.ProjectStore) (int, error) {
	existing, err := projects.List(ctx, repository.ProjectFilter{ListOptions: repository.ListOptions{Limit: 1}})
	if err != nil {
		return 0, fmt.Errorf("check catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded := 0
	for _, p := range SampleProjects() {
		p := p
		if err := projects.Create(ctx, &p); err != nil {
			return seeded, fmt.Errorf("seed project %q: %w", p.TitleEn, err)
		}
		seeded++
	}
	slog.Info("sample projects seeded", "count", seeded)
	return seeded, nil
}
