package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/templatehub/internal/access"
	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/repo"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]EventType, len(n.events))
	for i, e := range n.events {
		result[i] = e.Type
	}
	return result
}

func newTestService(t *testing.T) (*Service, *repo.MemoryStore, *recordingNotifier) {
	t.Helper()
	store := repo.NewMemoryStore()
	notifier := &recordingNotifier{}
	svc := New(Config{
		Store:    store,
		Notifier: notifier,
		Now:      func() time.Time { return fixedNow },
	})
	return svc, store, notifier
}

func member(id, org string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleUser, OrganizationID: org, OrganizationRole: domain.OrgRoleMember}
}

func owner(id, org string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleUser, OrganizationID: org, OrganizationRole: domain.OrgRoleOwner}
}

func viewer(id, org string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleUser, OrganizationID: org, OrganizationRole: domain.OrgRoleViewer}
}

func greetingDefinition() domain.TemplateDefinition {
	return domain.TemplateDefinition{
		Name:        "Greeting",
		Description: "Greets a new lead",
		Category:    domain.CategorySales,
		Difficulty:  domain.DifficultyBeginner,
		Nodes: []domain.Node{
			{ID: "t", Type: domain.NodeTypeTrigger},
			{ID: "a", Type: "action", Data: map[string]any{"msg": "Hello {{name}}"}},
		},
		Edges:     []domain.Edge{{Source: "t", Target: "a"}},
		Variables: map[string]any{"name": "there"},
		Tags:      []string{"sales", "sales", "email"},
	}
}

func mustCreate(t *testing.T, svc *Service, actor domain.Actor, def domain.TemplateDefinition) *domain.Template {
	t.Helper()
	tpl, err := svc.CreateTemplate(context.Background(), actor, actor.OrganizationID, def)
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	return tpl
}

func TestCreateTemplate(t *testing.T) {
	svc, _, notifier := newTestService(t)
	actor := member("u1", "org-a")

	tpl := mustCreate(t, svc, actor, greetingDefinition())

	if tpl.CreatedBy != "u1" || tpl.OrganizationID != "org-a" {
		t.Errorf("owner = %s/%s, want u1/org-a", tpl.CreatedBy, tpl.OrganizationID)
	}
	if tpl.UsageCount != 0 || tpl.ReviewCount != 0 || tpl.AverageRating != 0 {
		t.Errorf("counters must start at zero: %+v", tpl)
	}
	if len(tpl.Tags) != 2 {
		t.Errorf("tags = %v, want de-duplicated [sales email]", tpl.Tags)
	}
	if !tpl.CreatedAt.Equal(fixedNow) {
		t.Errorf("created_at = %v, want %v", tpl.CreatedAt, fixedNow)
	}
	if got := notifier.types(); len(got) != 1 || got[0] != EventTemplateCreated {
		t.Errorf("events = %v, want [template.created]", got)
	}
}

func TestCreateTemplate_Rejected(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	cyclic := greetingDefinition()
	cyclic.Edges = append(cyclic.Edges, domain.Edge{Source: "a", Target: "t"})

	noName := greetingDefinition()
	noName.Name = ""

	tests := []struct {
		name       string
		actor      domain.Actor
		def        domain.TemplateDefinition
		wantErr    error
		wantReason string
	}{
		{"viewer", viewer("u1", "org-a"), greetingDefinition(), ErrUnauthorized, ""},
		{"other tenant", member("u1", "org-b"), greetingDefinition(), ErrUnauthorized, ""},
		{"cycle", member("u1", "org-a"), cyclic, engine.ErrCycleDetected, "cycle detected"},
		{"missing name", member("u1", "org-a"), noName, engine.ErrInvalidField, "invalid field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTemplate(ctx, tt.actor, "org-a", tt.def)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantReason != "" {
				if !IsValidation(err) {
					t.Errorf("expected validation error, got %T", err)
				}
				if reason := engine.ReasonOf(err); reason != tt.wantReason {
					t.Errorf("reason = %q, want %q", reason, tt.wantReason)
				}
			}
		})
	}

	list, _ := store.ListTemplates(ctx, domain.TemplateFilter{Scope: domain.ScopeOwned, TenantID: "org-a"})
	if len(list) != 0 {
		t.Errorf("rejected templates were stored: %d", len(list))
	}
}

func TestGetTemplate_TenantIsolation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	private := mustCreate(t, svc, member("u1", "org-a"), greetingDefinition())

	if _, err := svc.GetTemplate(ctx, private.ID, "org-a"); err != nil {
		t.Fatalf("owner tenant: %v", err)
	}

	_, errInvisible := svc.GetTemplate(ctx, private.ID, "org-b")
	_, errMissing := svc.GetTemplate(ctx, uuid.New(), "org-b")
	if !errors.Is(errInvisible, ErrNotFound) || !errors.Is(errMissing, ErrNotFound) {
		t.Fatalf("got %v / %v, want ErrNotFound", errInvisible, errMissing)
	}
	if errInvisible.Error() != errMissing.Error() {
		t.Errorf("invisible and missing differ: %q vs %q", errInvisible, errMissing)
	}
}

func TestUseTemplate(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	def := greetingDefinition()
	def.IsPublic = true
	tpl := mustCreate(t, svc, member("u1", "org-a"), def)

	wf, err := svc.UseTemplate(ctx, member("u2", "org-b"), UseTemplateInput{
		TemplateID: tpl.ID,
		Variables:  map[string]any{"name": "Alice"},
		TenantID:   "org-b",
	})
	if err != nil {
		t.Fatalf("UseTemplate: %v", err)
	}

	if got := wf.Nodes[1].Data["msg"]; got != "Hello Alice" {
		t.Errorf("msg = %v, want Hello Alice", got)
	}
	if wf.Name != "Greeting" || wf.Description != "Greets a new lead" {
		t.Errorf("name/description = %q/%q, want template defaults", wf.Name, wf.Description)
	}
	if wf.IsActive || wf.ExecutionCount != 0 {
		t.Errorf("new workflow must be inactive with zero executions")
	}
	if wf.OrganizationID != "org-b" || wf.CreatedBy != "u2" || wf.TemplateID != tpl.ID {
		t.Errorf("unexpected ownership: %+v", wf)
	}
	if len(wf.Edges) != 1 || wf.Edges[0].Source != "t" {
		t.Errorf("edges = %v, want copy of template edges", wf.Edges)
	}

	// Шаблон не изменился.
	stored, _ := store.GetTemplate(ctx, tpl.ID)
	if stored.Nodes[1].Data["msg"] != "Hello {{name}}" {
		t.Errorf("template nodes mutated: %v", stored.Nodes[1].Data["msg"])
	}
	if stored.UsageCount != 1 {
		t.Errorf("usage_count = %d, want 1", stored.UsageCount)
	}
	if _, err := store.GetWorkflow(ctx, wf.ID); err != nil {
		t.Errorf("workflow not stored: %v", err)
	}

	types := notifier.types()
	if types[len(types)-1] != EventTemplateUsed {
		t.Errorf("last event = %v, want template.used", types[len(types)-1])
	}
}

func TestUseTemplate_CustomNameAndDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	actor := member("u1", "org-a")
	tpl := mustCreate(t, svc, actor, greetingDefinition())

	desc := ""
	wf, err := svc.UseTemplate(ctx, actor, UseTemplateInput{
		TemplateID:  tpl.ID,
		Name:        "My copy",
		Description: &desc,
		TenantID:    "org-a",
	})
	if err != nil {
		t.Fatalf("UseTemplate: %v", err)
	}
	if wf.Name != "My copy" || wf.Description != "" {
		t.Errorf("name/description = %q/%q", wf.Name, wf.Description)
	}
	if got := wf.Nodes[1].Data["msg"]; got != "Hello there" {
		t.Errorf("msg = %v, want template default value", got)
	}
}

func TestUseTemplate_Rejected(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	private := mustCreate(t, svc, member("u1", "org-a"), greetingDefinition())

	tests := []struct {
		name    string
		actor   domain.Actor
		in      UseTemplateInput
		wantErr error
	}{
		{
			name:    "viewer",
			actor:   viewer("u2", "org-a"),
			in:      UseTemplateInput{TemplateID: private.ID, TenantID: "org-a"},
			wantErr: ErrUnauthorized,
		},
		{
			name:    "private template of other tenant",
			actor:   member("u3", "org-b"),
			in:      UseTemplateInput{TemplateID: private.ID, TenantID: "org-b"},
			wantErr: ErrNotFound,
		},
		{
			name:    "missing template",
			actor:   member("u3", "org-b"),
			in:      UseTemplateInput{TemplateID: uuid.New(), TenantID: "org-b"},
			wantErr: ErrNotFound,
		},
		{
			name:    "super admin without tenant",
			actor:   domain.Actor{ID: "root", Role: domain.RoleSuperAdmin},
			in:      UseTemplateInput{TemplateID: private.ID},
			wantErr: engine.ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UseTemplate(ctx, tt.actor, tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	stored, _ := store.GetTemplate(ctx, private.ID)
	if stored.UsageCount != 0 || store.WorkflowCount() != 0 {
		t.Errorf("rejected use changed state: usage=%d workflows=%d", stored.UsageCount, store.WorkflowCount())
	}
}

func TestUseTemplate_Concurrent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	def := greetingDefinition()
	def.IsPublic = true
	tpl := mustCreate(t, svc, member("u1", "org-a"), def)

	const n = 100
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := svc.UseTemplate(ctx, member("u2", "org-b"), UseTemplateInput{
				TemplateID: tpl.ID,
				TenantID:   "org-b",
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("UseTemplate: %v", err)
	}

	stored, _ := store.GetTemplate(ctx, tpl.ID)
	if stored.UsageCount != n {
		t.Errorf("usage_count = %d, want %d", stored.UsageCount, n)
	}
	if store.WorkflowCount() != n {
		t.Errorf("workflows = %d, want %d", store.WorkflowCount(), n)
	}
}

func TestReviewTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	def := greetingDefinition()
	def.IsPublic = true
	tpl := mustCreate(t, svc, member("u1", "org-a"), def)

	// Оценка не требует права на управление: VIEWER тоже может оценить.
	reviewer := viewer("u9", "org-b")

	steps := []struct {
		rating    float64
		wantAvg   float64
		wantCount int64
	}{
		{5, 5.0, 1},
		{3, 4.0, 2},
		{4, 4.0, 3},
	}
	for _, step := range steps {
		res, err := svc.ReviewTemplate(ctx, reviewer, ReviewInput{
			TemplateID: tpl.ID,
			Rating:     step.rating,
			Comment:    "ok",
			TenantID:   "org-b",
		})
		if err != nil {
			t.Fatalf("ReviewTemplate(%v): %v", step.rating, err)
		}
		if res.Template.AverageRating != step.wantAvg || res.Template.ReviewCount != step.wantCount {
			t.Errorf("after %v: avg=%v count=%d, want %v/%d",
				step.rating, res.Template.AverageRating, res.Template.ReviewCount, step.wantAvg, step.wantCount)
		}
		if res.Review.UserID != "u9" || res.Review.Rating != step.rating {
			t.Errorf("review = %+v", res.Review)
		}
	}
}

func TestReviewTemplate_Rejected(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	private := mustCreate(t, svc, member("u1", "org-a"), greetingDefinition())

	tests := []struct {
		name    string
		in      ReviewInput
		wantErr error
	}{
		{"below range", ReviewInput{TemplateID: private.ID, Rating: 0, TenantID: "org-a"}, engine.ErrInvalidField},
		{"above range", ReviewInput{TemplateID: private.ID, Rating: 6, TenantID: "org-a"}, engine.ErrInvalidField},
		{"invisible", ReviewInput{TemplateID: private.ID, Rating: 4, TenantID: "org-b"}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ReviewTemplate(ctx, member("u2", tt.in.TenantID), tt.in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	stored, _ := store.GetTemplate(ctx, private.ID)
	if stored.ReviewCount != 0 || stored.AverageRating != 0 {
		t.Errorf("rejected review changed stats: %d/%v", stored.ReviewCount, stored.AverageRating)
	}
}

func TestUpdateTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	creator := member("u1", "org-a")
	tpl := mustCreate(t, svc, creator, greetingDefinition())

	name := "Renamed"
	updated, err := svc.UpdateTemplate(ctx, creator, tpl.ID, "org-a", domain.TemplatePatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateTemplate: %v", err)
	}
	if updated.Name != "Renamed" || len(updated.Nodes) != 2 {
		t.Errorf("unexpected update result: %+v", updated)
	}

	// Новые узлы проверяются вместе с сохранёнными рёбрами.
	_, err = svc.UpdateTemplate(ctx, creator, tpl.ID, "org-a", domain.TemplatePatch{
		Nodes: []domain.Node{{ID: "t", Type: domain.NodeTypeTrigger}},
	})
	if reason := engine.ReasonOf(err); reason != "dangling edge" {
		t.Errorf("reason = %q, want dangling edge", reason)
	}

	_, err = svc.UpdateTemplate(ctx, creator, tpl.ID, "org-a", domain.TemplatePatch{
		Edges: []domain.Edge{{Source: "t", Target: "a"}, {Source: "a", Target: "t"}},
	})
	if !errors.Is(err, engine.ErrCycleDetected) {
		t.Errorf("got %v, want ErrCycleDetected", err)
	}

	got, _ := svc.GetTemplate(ctx, tpl.ID, "org-a")
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Errorf("rejected patch was stored: nodes=%d edges=%d", len(got.Nodes), len(got.Edges))
	}
}

func TestUpdateTemplate_Access(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	def := greetingDefinition()
	def.IsPublic = true
	tpl := mustCreate(t, svc, member("u1", "org-a"), def)
	name := "x"

	tests := []struct {
		name    string
		actor   domain.Actor
		tenant  string
		wantErr error
	}{
		{"other member", member("u2", "org-a"), "org-a", ErrUnauthorized},
		{"demoted creator", viewer("u1", "org-a"), "org-a", ErrUnauthorized},
		{"creator outside tenant", member("u1", "org-b"), "org-a", ErrUnauthorized},
		{"other tenant", owner("u3", "org-b"), "org-b", ErrNotFound},
		{"org owner", owner("u4", "org-a"), "org-a", nil},
		{"super admin", domain.Actor{ID: "root", Role: domain.RoleSuperAdmin}, "org-z", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateTemplate(ctx, tt.actor, tpl.ID, tt.tenant, domain.TemplatePatch{Name: &name})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMutations_RequireCapability(t *testing.T) {
	ctx := context.Background()
	denyAll := access.CapabilityFunc(func(domain.Actor, string) bool { return false })

	tests := []struct {
		name       string
		capability access.Capability
		actor      domain.Actor
	}{
		{"creator demoted to viewer", nil, viewer("u1", "org-a")},
		{"capability denied", denyAll, member("u1", "org-a")},
		{"super admin denied", denyAll, domain.Actor{ID: "root", Role: domain.RoleSuperAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repo.NewMemoryStore()
			notifier := &recordingNotifier{}
			setup := New(Config{Store: store, Notifier: notifier, Now: func() time.Time { return fixedNow }})
			tpl := mustCreate(t, setup, member("u1", "org-a"), greetingDefinition())

			svc := New(Config{Store: store, Capability: tt.capability, Notifier: notifier, Now: func() time.Time { return fixedNow }})
			name := "renamed"

			if _, err := svc.UpdateTemplate(ctx, tt.actor, tpl.ID, "org-a", domain.TemplatePatch{Name: &name}); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("update: got %v, want ErrUnauthorized", err)
			}
			if _, err := svc.PublishTemplate(ctx, tt.actor, tpl.ID, "org-a"); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("publish: got %v, want ErrUnauthorized", err)
			}
			if err := svc.DeleteTemplate(ctx, tt.actor, tpl.ID, "org-a"); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("delete: got %v, want ErrUnauthorized", err)
			}

			stored, err := store.GetTemplate(ctx, tpl.ID)
			if err != nil {
				t.Fatalf("template must survive rejected delete: %v", err)
			}
			if stored.Name != tpl.Name || stored.IsPublic || !stored.UpdatedAt.Equal(tpl.UpdatedAt) {
				t.Errorf("template changed by rejected mutations: %+v", stored)
			}
			if got := notifier.types(); len(got) != 1 || got[0] != EventTemplateCreated {
				t.Errorf("events = %v, want only %s", got, EventTemplateCreated)
			}
		})
	}
}

func TestPublishAndDelete(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()
	creator := member("u1", "org-a")
	tpl := mustCreate(t, svc, creator, greetingDefinition())

	if _, err := svc.PublishTemplate(ctx, member("u2", "org-a"), tpl.ID, "org-a"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-creator publish: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.PublishTemplate(ctx, viewer("u1", "org-a"), tpl.ID, "org-a"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("viewer creator publish: got %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteTemplate(ctx, viewer("u1", "org-a"), tpl.ID, "org-a"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("viewer creator delete: got %v, want ErrUnauthorized", err)
	}

	published, err := svc.PublishTemplate(ctx, creator, tpl.ID, "org-a")
	if err != nil {
		t.Fatalf("PublishTemplate: %v", err)
	}
	if !published.IsPublic {
		t.Error("expected public template")
	}
	if _, err := svc.GetTemplate(ctx, tpl.ID, "org-b"); err != nil {
		t.Errorf("published template should be visible to other tenants: %v", err)
	}

	wf, err := svc.UseTemplate(ctx, member("u5", "org-b"), UseTemplateInput{TemplateID: tpl.ID, TenantID: "org-b"})
	if err != nil {
		t.Fatalf("UseTemplate: %v", err)
	}

	if err := svc.DeleteTemplate(ctx, creator, tpl.ID, "org-a"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if _, err := svc.GetTemplate(ctx, tpl.ID, "org-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted template: got %v, want ErrNotFound", err)
	}
	if _, err := store.GetWorkflow(ctx, wf.ID); err != nil {
		t.Errorf("workflow must survive template deletion: %v", err)
	}

	want := []EventType{EventTemplateCreated, EventTemplatePublished, EventTemplateUsed, EventTemplateDeleted}
	got := notifier.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events = %v, want %v", got, want)
			break
		}
	}
}

func TestNotifierFailureIsIgnored(t *testing.T) {
	store := repo.NewMemoryStore()
	svc := New(Config{
		Store:    store,
		Notifier: &recordingNotifier{err: errors.New("broker down")},
	})

	if _, err := svc.CreateTemplate(context.Background(), member("u1", "org-a"), "org-a", greetingDefinition()); err != nil {
		t.Fatalf("CreateTemplate must not fail on notifier error: %v", err)
	}
}

func TestListing(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	actor := member("u1", "org-a")

	featured := greetingDefinition()
	featured.Name = "Featured sales"
	featured.IsPublic = true
	featured.IsFeatured = true
	featuredTpl := mustCreate(t, svc, actor, featured)

	support := greetingDefinition()
	support.Name = "Support triage"
	support.Category = domain.CategorySupport
	support.IsPublic = true
	mustCreate(t, svc, actor, support)

	private := greetingDefinition()
	private.Name = "Private sales"
	mustCreate(t, svc, actor, private)

	for i := 0; i < 3; i++ {
		if _, err := svc.UseTemplate(ctx, actor, UseTemplateInput{TemplateID: featuredTpl.ID, TenantID: "org-a"}); err != nil {
			t.Fatalf("UseTemplate: %v", err)
		}
	}

	list, err := svc.ListFeatured(ctx, 10)
	if err != nil || len(list) != 1 || list[0].Name != "Featured sales" {
		t.Errorf("ListFeatured = %v, %v", list, err)
	}

	list, err = svc.ListByCategory(ctx, domain.CategorySales)
	if err != nil || len(list) != 1 || list[0].Name != "Featured sales" {
		t.Errorf("ListByCategory(SALES) = %v, %v", list, err)
	}

	if _, err := svc.ListByCategory(ctx, "GARDENING"); !IsValidation(err) {
		t.Errorf("unknown category: got %v, want validation error", err)
	}

	list, err = svc.SearchTemplates(ctx, "org-a", domain.TemplateFilter{Category: domain.CategorySales})
	if err != nil || len(list) != 2 {
		t.Errorf("SearchTemplates(org-a, SALES) = %d templates, %v; want 2", len(list), err)
	}

	list, err = svc.SearchTemplates(ctx, "org-b", domain.TemplateFilter{Search: "sales"})
	if err != nil || len(list) != 1 {
		t.Errorf("SearchTemplates(org-b, sales) = %d templates, %v; want 1", len(list), err)
	}

	list, err = svc.ListOrganizationTemplates(ctx, "org-a")
	if err != nil || len(list) != 3 {
		t.Errorf("ListOrganizationTemplates = %d templates, %v; want 3", len(list), err)
	}

	list, err = svc.ListOrganizationTemplates(ctx, "org-b")
	if err != nil || list == nil || len(list) != 0 {
		t.Errorf("ListOrganizationTemplates(org-b) = %v, %v; want empty slice", list, err)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalTemplates != 2 || stats.FeaturedTemplates != 1 || stats.TotalUsage != 3 {
		t.Errorf("stats = %+v", stats)
	}
}
