package repository

import (
	"context"
	"testing"

	"github.com/cncdesign/cncbackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every backend must share.
func runStoreContract(t *testing.T, newStores func(t *testing.T) *Stores) {
	t.Run("submissions newest first", func(t *testing.T) {
		ctx := context.Background()
		s := newStores(t).Submissions

		var ids []string
		for _, name := range []string{"A", "B", "C"} {
			sub := newSubmission(name)
			require.NoError(t, s.Create(ctx, sub))
			require.NotEmpty(t, sub.ID)
			require.False(t, sub.CreatedAt.IsZero())
			ids = append(ids, sub.ID)
		}

		list, err := s.List(ctx, SubmissionFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})

		paged, err := s.List(ctx, SubmissionFilter{ListOptions: ListOptions{Skip: 1, Limit: 1}})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, ids[1], paged[0].ID)
	})

	t.Run("submission get, status and delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStores(t).Submissions

		sub := newSubmission("Abebe")
		sub.Images = []string{"https://cdn.example.com/a.png"}
		sub.Files = []string{"https://cdn.example.com/a.pdf"}
		require.NoError(t, s.Create(ctx, sub))

		got, err := s.Get(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Abebe", got.Name)
		assert.Equal(t, models.SubmissionStatusPending, got.Status)
		assert.Equal(t, sub.Images, got.Images)
		assert.Equal(t, sub.Files, got.Files)

		updated, err := s.UpdateStatus(ctx, sub.ID, models.SubmissionStatusQuoted)
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionStatusQuoted, updated.Status)

		quoted, err := s.List(ctx, SubmissionFilter{Status: models.SubmissionStatusQuoted})
		require.NoError(t, err)
		require.Len(t, quoted, 1)
		pending, err := s.List(ctx, SubmissionFilter{Status: models.SubmissionStatusPending})
		require.NoError(t, err)
		require.Empty(t, pending)

		require.NoError(t, s.Delete(ctx, sub.ID))
		_, err = s.Get(ctx, sub.ID)
		require.ErrorIs(t, err, ErrNotFound)
		require.ErrorIs(t, s.Delete(ctx, sub.ID), ErrNotFound)
		_, err = s.UpdateStatus(ctx, sub.ID, models.SubmissionStatusContacted)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty list is not an error", func(t *testing.T) {
		stores := newStores(t)
		subs, err := stores.Submissions.List(context.Background(), SubmissionFilter{})
		require.NoError(t, err)
		require.NotNil(t, subs)
		require.Empty(t, subs)

		projects, err := stores.Projects.List(context.Background(), ProjectFilter{})
		require.NoError(t, err)
		require.NotNil(t, projects)
		require.Empty(t, projects)
	})

	t.Run("project dimensions round trip", func(t *testing.T) {
		ctx := context.Background()
		s := newStores(t).Projects

		p := newProject("Dining Table")
		p.Dimensions = &models.Dimensions{Length: "180", Width: "90", Height: "75", Unit: "cm"}
		require.NoError(t, s.Create(ctx, p))

		got, err := s.Get(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Dimensions)
		assert.Equal(t, models.Dimensions{Length: "180", Width: "90", Height: "75", Unit: "cm"}, *got.Dimensions)
		assert.Equal(t, []string{"Oak", "Steel"}, got.Materials)

		bare := newProject("Shelf")
		require.NoError(t, s.Create(ctx, bare))
		got, err = s.Get(ctx, bare.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Dimensions)
	})

	t.Run("project update, filters and delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStores(t).Projects

		a := newProject("A")
		a.Category = "living"
		b := newProject("B")
		b.Category = "bedroom"
		require.NoError(t, s.Create(ctx, a))
		require.NoError(t, s.Create(ctx, b))

		featured := true
		title := "A (refinished)"
		updated, err := s.Update(ctx, a.ID, models.ProjectPatch{Featured: &featured, TitleEn: &title})
		require.NoError(t, err)
		assert.True(t, updated.Featured)
		assert.Equal(t, "A (refinished)", updated.TitleEn)
		assert.Equal(t, a.TitleAm, updated.TitleAm)

		onlyFeatured, err := s.List(ctx, ProjectFilter{Featured: &featured})
		require.NoError(t, err)
		require.Len(t, onlyFeatured, 1)
		assert.Equal(t, a.ID, onlyFeatured[0].ID)

		bedroom, err := s.List(ctx, ProjectFilter{Category: "bedroom"})
		require.NoError(t, err)
		require.Len(t, bedroom, 1)
		assert.Equal(t, b.ID, bedroom[0].ID)

		// category match is exact on every backend
		upper, err := s.List(ctx, ProjectFilter{Category: "Bedroom"})
		require.NoError(t, err)
		assert.Empty(t, upper)

		all, err := s.List(ctx, ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, b.ID, all[0].ID)

		require.NoError(t, s.Delete(ctx, a.ID))
		require.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)
		_, err = s.Get(ctx, a.ID)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.Update(ctx, a.ID, models.ProjectPatch{Featured: &featured})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("users ensure once", func(t *testing.T) {
		ctx := context.Background()
		s := newStores(t).Users

		created, err := s.EnsureUser(ctx, &models.User{Email: "admin@cncdesign.com", PasswordHash: "h1", Role: models.RoleAdmin, IsActive: true})
		require.NoError(t, err)
		require.True(t, created)

		created, err = s.EnsureUser(ctx, &models.User{Email: "admin@cncdesign.com", PasswordHash: "h2", Role: models.RoleAdmin, IsActive: true})
		require.NoError(t, err)
		require.False(t, created)

		u, err := s.FindByEmail(ctx, "admin@cncdesign.com")
		require.NoError(t, err)
		assert.Equal(t, "h1", u.PasswordHash)

		_, err = s.FindByEmail(ctx, "nobody@cncdesign.com")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.UpdatePassword(ctx, "admin@cncdesign.com", "h3"))
		u, err = s.FindByEmail(ctx, "admin@cncdesign.com")
		require.NoError(t, err)
		assert.Equal(t, "h3", u.PasswordHash)

		require.ErrorIs(t, s.UpdatePassword(ctx, "nobody@cncdesign.com", "h4"), ErrNotFound)
	})
}

func newSubmission(name string) *models.Submission {
	return &models.Submission{
		Name:        name,
		Email:       "client@example.com",
		Phone:       "+251911000000",
		ProjectType: "kitchen",
		Description: "Walnut cabinets",
		Language:    "en",
		Images:      []string{},
		Files:       []string{},
		Status:      models.SubmissionStatusPending,
	}
}

func newProject(title string) *models.Project {
	return &models.Project{
		TitleEn:       title,
		TitleAm:       title + " (am)",
		DescriptionEn: "desc",
		DescriptionAm: "desc (am)",
		Category:      "living",
		Materials:     []string{"Oak", "Steel"},
		Images:        []string{"/projects/" + title + ".jpg"},
	}
}
