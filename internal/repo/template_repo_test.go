package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/templatehub/internal/domain"
)

// newTestRepo поднимает PostgreSQL в контейнере и применяет схему.
func newTestRepo(t *testing.T) *TemplateRepo {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("templatehub"),
		postgres.WithUsername("templatehub"),
		postgres.WithPassword("templatehub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(ctx, pool))
	// Повторное применение схемы не должно падать.
	require.NoError(t, EnsureSchema(ctx, pool))

	return NewTemplateRepo(pool)
}

func TestTemplateRepo(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		tpl := newTemplate("org-a", false)
		require.NoError(t, r.CreateTemplate(ctx, tpl))
		assert.ErrorIs(t, r.CreateTemplate(ctx, tpl), ErrAlreadyExists)

		got, err := r.GetTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.Equal(t, tpl.Name, got.Name)
		assert.Equal(t, tpl.Category, got.Category)
		assert.Equal(t, tpl.Nodes[1].Data["msg"], got.Nodes[1].Data["msg"])
		assert.Equal(t, tpl.Edges, got.Edges)
		assert.Equal(t, tpl.Tags, got.Tags)
		assert.Equal(t, "there", got.Variables["name"])
		assert.True(t, tpl.CreatedAt.Equal(got.CreatedAt))

		_, err = r.GetTemplate(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update keeps counters", func(t *testing.T) {
		tpl := newTemplate("org-a", false)
		require.NoError(t, r.CreateTemplate(ctx, tpl))
		require.NoError(t, r.Instantiate(ctx, newWorkflow(tpl.ID, "org-a")))

		tpl.Name = "Renamed"
		tpl.UsageCount = 999
		tpl.IsPublic = true
		updated, err := r.UpdateTemplate(ctx, tpl)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.EqualValues(t, 1, updated.UsageCount)
		assert.False(t, updated.IsPublic)
	})

	t.Run("Publish and Delete", func(t *testing.T) {
		tpl := newTemplate("org-a", false)
		require.NoError(t, r.CreateTemplate(ctx, tpl))

		published, err := r.PublishTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.True(t, published.IsPublic)

		require.NoError(t, r.DeleteTemplate(ctx, tpl.ID))
		assert.ErrorIs(t, r.DeleteTemplate(ctx, tpl.ID), ErrNotFound)
		assert.ErrorIs(t, r.Instantiate(ctx, newWorkflow(tpl.ID, "org-a")), ErrNotFound)
	})

	t.Run("Instantiate stores workflow", func(t *testing.T) {
		tpl := newTemplate("org-a", true)
		require.NoError(t, r.CreateTemplate(ctx, tpl))

		wf := newWorkflow(tpl.ID, "org-b")
		require.NoError(t, r.Instantiate(ctx, wf))

		got, err := r.GetWorkflow(ctx, wf.ID)
		require.NoError(t, err)
		assert.Equal(t, "org-b", got.OrganizationID)
		assert.Equal(t, tpl.ID, got.TemplateID)
		assert.False(t, got.IsActive)
		assert.EqualValues(t, 0, got.ExecutionCount)

		// Повтор с тем же ID откатывает транзакцию целиком.
		assert.Error(t, r.Instantiate(ctx, wf))
		stored, err := r.GetTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stored.UsageCount)
	})

	t.Run("Concurrent instantiate", func(t *testing.T) {
		tpl := newTemplate("org-a", true)
		require.NoError(t, r.CreateTemplate(ctx, tpl))

		const n = 50
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				return r.Instantiate(ctx, newWorkflow(tpl.ID, "org-b"))
			})
		}
		require.NoError(t, g.Wait())

		got, err := r.GetTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.EqualValues(t, n, got.UsageCount)
	})

	t.Run("Review sequence", func(t *testing.T) {
		tpl := newTemplate("org-a", true)
		require.NoError(t, r.CreateTemplate(ctx, tpl))

		steps := []struct {
			rating float64
			avg    float64
		}{
			{5, 5.0},
			{3, 4.0},
			{4, 4.0},
		}
		for _, step := range steps {
			got, err := r.ApplyReview(ctx, tpl.ID, step.rating)
			require.NoError(t, err)
			assert.Equal(t, step.avg, got.AverageRating)
		}

		got, err := r.GetTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, got.ReviewCount)

		_, err = r.ApplyReview(ctx, uuid.New(), 4)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Concurrent reviews", func(t *testing.T) {
		tpl := newTemplate("org-a", true)
		require.NoError(t, r.CreateTemplate(ctx, tpl))

		const n = 40
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, err := r.ApplyReview(ctx, tpl.ID, 4)
				return err
			})
		}
		require.NoError(t, g.Wait())

		got, err := r.GetTemplate(ctx, tpl.ID)
		require.NoError(t, err)
		assert.EqualValues(t, n, got.ReviewCount)
		assert.Equal(t, 4.0, got.AverageRating)
	})

	t.Run("List and Stats", func(t *testing.T) {
		org := "org-" + uuid.NewString()

		visible := newTemplate(org, false)
		visible.Name = "Org private"
		visible.Tags = []string{"support"}
		require.NoError(t, r.CreateTemplate(ctx, visible))

		list, err := r.ListTemplates(ctx, domain.TemplateFilter{
			Scope:    domain.ScopeOwned,
			TenantID: org,
		})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Org private", list[0].Name)

		list, err = r.ListTemplates(ctx, domain.TemplateFilter{
			TenantID: org,
			Tags:     []string{"support"},
			Search:   "PRIVATE",
		})
		require.NoError(t, err)
		require.Len(t, list, 1)

		list, err = r.ListTemplates(ctx, domain.TemplateFilter{Scope: domain.ScopePublic})
		require.NoError(t, err)
		for _, tpl := range list {
			assert.True(t, tpl.IsPublic)
		}

		stats, err := r.Stats(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, len(list), stats.TotalTemplates)
		assert.Positive(t, stats.TotalUsage)
	})
}
