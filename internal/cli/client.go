package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// NodeResponse — узел графа.
type NodeResponse struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// EdgeResponse — ребро графа.
type EdgeResponse struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TemplateResponse — шаблон из API.
type TemplateResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Difficulty     string         `json:"difficulty"`
	Nodes          []NodeResponse `json:"nodes"`
	Edges          []EdgeResponse `json:"edges"`
	Variables      map[string]any `json:"variables"`
	Tags           []string       `json:"tags"`
	IsPublic       bool           `json:"is_public"`
	IsFeatured     bool           `json:"is_featured"`
	OrganizationID string         `json:"organization_id"`
	CreatedBy      string         `json:"created_by"`
	UsageCount     int64          `json:"usage_count"`
	ReviewCount    int64          `json:"review_count"`
	AverageRating  float64        `json:"average_rating"`
	Badge          string         `json:"badge"`
	IsPopular      bool           `json:"is_popular"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

// WorkflowResponse — workflow, созданный из шаблона.
type WorkflowResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Nodes          []NodeResponse `json:"nodes"`
	Edges          []EdgeResponse `json:"edges"`
	OrganizationID string         `json:"organization_id"`
	CreatedBy      string         `json:"created_by"`
	IsActive       bool           `json:"is_active"`
	ExecutionCount int64          `json:"execution_count"`
	TemplateID     string         `json:"template_id"`
	CreatedAt      string         `json:"created_at"`
}

// ReviewResponse — шаблон после учёта оценки.
type ReviewResponse struct {
	Template TemplateResponse `json:"template"`
	Review   struct {
		Rating  float64 `json:"rating"`
		Comment string  `json:"comment,omitempty"`
	} `json:"review"`
}

// StatsResponse — статистика каталога.
type StatsResponse struct {
	TotalTemplates    int64            `json:"total_templates"`
	FeaturedTemplates int64            `json:"featured_templates"`
	TotalUsage        int64            `json:"total_usage"`
	TotalReviews      int64            `json:"total_reviews"`
	AverageRating     float64          `json:"average_rating"`
	ByCategory        map[string]int64 `json:"by_category"`
}

// --- Request types ---

// UseTemplateRequest — создание workflow из шаблона.
type UseTemplateRequest struct {
	Name        string         `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
}

// ReviewRequest — оценка шаблона.
type ReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment,omitempty"`
}

// ListTemplatesOpts — параметры поиска шаблонов.
type ListTemplatesOpts struct {
	Category   string
	Difficulty string
	Tags       string
	Search     string
	MinRating  float64
	MinUsage   int64
	Sort       string
	Order      string
	Limit      int
	Offset     int
}

func (o ListTemplatesOpts) values() url.Values {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	set("category", o.Category)
	set("difficulty", o.Difficulty)
	set("tags", o.Tags)
	set("q", o.Search)
	set("sort", o.Sort)
	set("order", o.Order)
	if o.MinRating > 0 {
		params.Set("min_rating", strconv.FormatFloat(o.MinRating, 'f', -1, 64))
	}
	if o.MinUsage > 0 {
		params.Set("min_usage", strconv.FormatInt(o.MinUsage, 10))
	}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	return params
}

// Identity — пользователь, от имени которого CLI обращается к API.
// Передаётся теми же заголовками, что выставляет gateway.
type Identity struct {
	UserID           string
	Role             string
	OrganizationID   string
	OrganizationRole string
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для TemplateHub API.
type Client struct {
	baseURL    string
	identity   Identity
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string, identity Identity) *Client {
	return &Client{
		baseURL:  baseURL,
		identity: identity,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Templates ---

// ListTemplates ищет шаблоны, видимые организации.
func (c *Client) ListTemplates(opts ListTemplatesOpts) ([]TemplateResponse, error) {
	var templates []TemplateResponse
	err := c.list("/api/v1/templates", opts.values(), &templates)
	return templates, err
}

// ListFeatured возвращает избранные шаблоны.
func (c *Client) ListFeatured(limit int) ([]TemplateResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var templates []TemplateResponse
	err := c.list("/api/v1/templates/featured", params, &templates)
	return templates, err
}

// ListByCategory возвращает публичные шаблоны категории.
func (c *Client) ListByCategory(category string) ([]TemplateResponse, error) {
	var templates []TemplateResponse
	err := c.list("/api/v1/templates/categories/"+url.PathEscape(category), nil, &templates)
	return templates, err
}

// ListOrganizationTemplates возвращает все шаблоны своей организации.
func (c *Client) ListOrganizationTemplates() ([]TemplateResponse, error) {
	var templates []TemplateResponse
	err := c.list("/api/v1/organizations/templates", nil, &templates)
	return templates, err
}

// GetTemplate возвращает шаблон по ID.
func (c *Client) GetTemplate(id string) (*TemplateResponse, error) {
	var template TemplateResponse
	err := c.get("/api/v1/templates/"+id, &template)
	return &template, err
}

// CreateTemplate создаёт шаблон из JSON-определения.
func (c *Client) CreateTemplate(definition json.RawMessage) (*TemplateResponse, error) {
	var template TemplateResponse
	err := c.post("/api/v1/templates", definition, &template)
	return &template, err
}

// UpdateTemplate применяет частичное обновление.
func (c *Client) UpdateTemplate(id string, patch json.RawMessage) (*TemplateResponse, error) {
	var template TemplateResponse
	err := c.put("/api/v1/templates/"+id, patch, &template)
	return &template, err
}

// DeleteTemplate удаляет шаблон.
func (c *Client) DeleteTemplate(id string) error {
	return c.delete("/api/v1/templates/" + id)
}

// PublishTemplate делает шаблон публичным.
func (c *Client) PublishTemplate(id string) (*TemplateResponse, error) {
	var template TemplateResponse
	err := c.post("/api/v1/templates/"+id+"/publish", nil, &template)
	return &template, err
}

// UseTemplate создаёт workflow из шаблона.
func (c *Client) UseTemplate(id string, req UseTemplateRequest) (*WorkflowResponse, error) {
	var workflow WorkflowResponse
	err := c.post("/api/v1/templates/"+id+"/use", req, &workflow)
	return &workflow, err
}

// ReviewTemplate оценивает шаблон.
func (c *Client) ReviewTemplate(id string, req ReviewRequest) (*ReviewResponse, error) {
	var review ReviewResponse
	err := c.post("/api/v1/templates/"+id+"/reviews", req, &review)
	return &review, err
}

// GetStats возвращает статистику каталога.
func (c *Client) GetStats() (*StatsResponse, error) {
	var stats StatsResponse
	err := c.get("/api/v1/templates/stats", &stats)
	return &stats, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case json.RawMessage:
		bodyReader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setIdentity(req)

	return c.httpClient.Do(req)
}

func (c *Client) setIdentity(req *http.Request) {
	headers := map[string]string{
		"X-User-ID":           c.identity.UserID,
		"X-User-Role":         c.identity.Role,
		"X-Organization-ID":   c.identity.OrganizationID,
		"X-Organization-Role": c.identity.OrganizationRole,
	}
	for name, value := range headers {
		if value != "" {
			req.Header.Set(name, value)
		}
	}
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
