package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
)

// templateColumns — порядок колонок для scanTemplate.
const templateColumns = `
	id, name, description, category, difficulty,
	nodes, edges, variables, tags,
	is_public, is_featured, organization_id, created_by,
	usage_count, review_count, average_rating,
	created_at, updated_at
`

// uniqueViolation — код ошибки PostgreSQL при нарушении уникальности.
const uniqueViolation = "23505"

// TemplateRepo — репозиторий шаблонов и созданных из них workflow.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

// NewTemplateRepo создаёт новый TemplateRepo.
func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

// CreateTemplate сохраняет новый шаблон.
func (r *TemplateRepo) CreateTemplate(ctx context.Context, t *domain.Template) error {
	nodesJSON, edgesJSON, varsJSON, err := marshalGraph(t.Nodes, t.Edges, t.Variables)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = r.pool.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		string(t.Category),
		string(t.Difficulty),
		nodesJSON,
		edgesJSON,
		varsJSON,
		nonNilTags(t.Tags),
		t.IsPublic,
		t.IsFeatured,
		t.OrganizationID,
		t.CreatedBy,
		t.UsageCount,
		t.ReviewCount,
		t.AverageRating,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// GetTemplate возвращает шаблон по ID.
func (r *TemplateRepo) GetTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM workflow_templates WHERE id = $1`

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template by id: %w", err)
	}
	return t, nil
}

// UpdateTemplate обновляет поля определения шаблона.
//
// usage_count, review_count, average_rating, is_public и created_*
// не перезаписываются: результат содержит их актуальные значения.
func (r *TemplateRepo) UpdateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error) {
	nodesJSON, edgesJSON, varsJSON, err := marshalGraph(t.Nodes, t.Edges, t.Variables)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE workflow_templates
		SET
			name = $2,
			description = $3,
			category = $4,
			difficulty = $5,
			nodes = $6,
			edges = $7,
			variables = $8,
			tags = $9,
			is_featured = $10,
			updated_at = $11
		WHERE id = $1
		RETURNING ` + templateColumns

	updated, err := scanTemplate(r.pool.QueryRow(ctx, query,
		t.ID,
		t.Name,
		t.Description,
		string(t.Category),
		string(t.Difficulty),
		nodesJSON,
		edgesJSON,
		varsJSON,
		nonNilTags(t.Tags),
		t.IsFeatured,
		t.UpdatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return updated, nil
}

// DeleteTemplate удаляет шаблон.
func (r *TemplateRepo) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflow_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishTemplate выставляет is_public = true.
func (r *TemplateRepo) PublishTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	query := `
		UPDATE workflow_templates
		SET is_public = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + templateColumns

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("publish template: %w", err)
	}
	return t, nil
}

// Instantiate сохраняет workflow и увеличивает usage_count шаблона.
//
// Обе записи выполняются в одной транзакции. Инкремент делается
// выражением usage_count = usage_count + 1, поэтому параллельные
// вызовы не теряют обновлений.
func (r *TemplateRepo) Instantiate(ctx context.Context, wf *domain.Workflow) error {
	nodesJSON, err := json.Marshal(wf.Nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(wf.Edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback после Commit ничего не делает.
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE workflow_templates
		SET usage_count = usage_count + 1
		WHERE id = $1
	`, wf.TemplateID)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workflows (
			id, name, description, nodes, edges, organization_id, created_by,
			is_active, execution_count, template_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		wf.ID,
		wf.Name,
		wf.Description,
		nodesJSON,
		edgesJSON,
		wf.OrganizationID,
		wf.CreatedBy,
		wf.IsActive,
		wf.ExecutionCount,
		wf.TemplateID,
		wf.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert workflow: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit instantiate: %w", err)
	}
	return nil
}

// ApplyReview учитывает оценку одним UPDATE.
//
// Все выражения в SET видят значения строки до обновления, поэтому
// новое среднее считается от старых review_count и average_rating.
func (r *TemplateRepo) ApplyReview(ctx context.Context, id uuid.UUID, rating float64) (*domain.Template, error) {
	query := `
		UPDATE workflow_templates
		SET
			review_count = review_count + 1,
			average_rating = ROUND(
				((average_rating * review_count + $2::double precision) / (review_count + 1))::numeric, 1
			)::double precision
		WHERE id = $1
		RETURNING ` + templateColumns

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, id, rating))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("apply review: %w", err)
	}
	return t, nil
}

// GetWorkflow возвращает workflow по ID.
func (r *TemplateRepo) GetWorkflow(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	query := `
		SELECT
			id, name, description, nodes, edges, organization_id, created_by,
			is_active, execution_count, template_id, created_at
		FROM workflows
		WHERE id = $1
	`
	var wf domain.Workflow
	var nodesJSON, edgesJSON []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&wf.ID,
		&wf.Name,
		&wf.Description,
		&nodesJSON,
		&edgesJSON,
		&wf.OrganizationID,
		&wf.CreatedBy,
		&wf.IsActive,
		&wf.ExecutionCount,
		&wf.TemplateID,
		&wf.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow by id: %w", err)
	}
	if err := json.Unmarshal(nodesJSON, &wf.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &wf.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}
	return &wf, nil
}

// ListTemplates возвращает шаблоны по фильтру.
func (r *TemplateRepo) ListTemplates(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error) {
	filter = filter.Normalize()
	conditions, args := filterConditions(filter)

	query := `SELECT ` + templateColumns + ` FROM workflow_templates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	// SortBy проверен в Normalize, подстановка в запрос безопасна.
	query += fmt.Sprintf(" ORDER BY %s %s, created_at DESC, id", filter.SortBy, direction)
	query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// filterConditions строит WHERE-условия и аргументы запроса.
func filterConditions(filter domain.TemplateFilter) ([]string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	add := func(cond string, arg any) {
		conditions = append(conditions, fmt.Sprintf(cond, argNum))
		args = append(args, arg)
		argNum++
	}

	switch filter.Scope {
	case domain.ScopePublic:
		conditions = append(conditions, "is_public")
	case domain.ScopeOwned:
		add("organization_id = $%d", filter.TenantID)
	default:
		if filter.TenantID == "" {
			conditions = append(conditions, "is_public")
		} else {
			add("(is_public OR organization_id = $%d)", filter.TenantID)
		}
	}

	if filter.Category != "" {
		add("category = $%d", string(filter.Category))
	}
	if filter.Difficulty != "" {
		add("difficulty = $%d", string(filter.Difficulty))
	}
	if len(filter.Tags) > 0 {
		add("tags && $%d", filter.Tags)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argNum, argNum))
		args = append(args, pattern)
		argNum++
	}
	if filter.MinRating > 0 {
		add("average_rating >= $%d", filter.MinRating)
	}
	if filter.MinUsage > 0 {
		add("usage_count >= $%d", filter.MinUsage)
	}
	if filter.FeaturedOnly {
		conditions = append(conditions, "is_featured")
	}

	return conditions, args
}

// Stats возвращает агрегаты по публичным шаблонам.
func (r *TemplateRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{ByCategory: make(map[domain.Category]int64)}
	var weighted float64

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_featured),
			COALESCE(SUM(usage_count), 0)::bigint,
			COALESCE(SUM(review_count), 0)::bigint,
			COALESCE(SUM(average_rating * review_count), 0)::double precision
		FROM workflow_templates
		WHERE is_public
	`).Scan(
		&stats.TotalTemplates,
		&stats.FeaturedTemplates,
		&stats.TotalUsage,
		&stats.TotalReviews,
		&weighted,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate templates: %w", err)
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = engine.Round1(weighted / float64(stats.TotalReviews))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT category, COUNT(*)
		FROM workflow_templates
		WHERE is_public
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory[domain.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return stats, nil
}

// scanTemplate сканирует одну строку в Template.
func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var t domain.Template
	var category, difficulty string
	var nodesJSON, edgesJSON, varsJSON []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&category,
		&difficulty,
		&nodesJSON,
		&edgesJSON,
		&varsJSON,
		&t.Tags,
		&t.IsPublic,
		&t.IsFeatured,
		&t.OrganizationID,
		&t.CreatedBy,
		&t.UsageCount,
		&t.ReviewCount,
		&t.AverageRating,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Category = domain.Category(category)
	t.Difficulty = domain.Difficulty(difficulty)

	if err := json.Unmarshal(nodesJSON, &t.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &t.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}
	if err := json.Unmarshal(varsJSON, &t.Variables); err != nil {
		return nil, fmt.Errorf("unmarshal variables: %w", err)
	}
	return &t, nil
}

func marshalGraph(nodes []domain.Node, edges []domain.Edge, variables map[string]any) (nodesJSON, edgesJSON, varsJSON []byte, err error) {
	if nodesJSON, err = json.Marshal(nodes); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal nodes: %w", err)
	}
	if edges == nil {
		edges = []domain.Edge{}
	}
	if edgesJSON, err = json.Marshal(edges); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal edges: %w", err)
	}
	if variables == nil {
		variables = map[string]any{}
	}
	if varsJSON, err = json.Marshal(variables); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal variables: %w", err)
	}
	return nodesJSON, edgesJSON, varsJSON, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// escapeLike экранирует спецсимволы ILIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
