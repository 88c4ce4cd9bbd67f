package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.AutoMigrate(
		&domain.User{}, &domain.Project{}, &domain.PluginState{},
		&domain.TimelineEvent{}, &domain.TimelineEventStatus{}, &domain.TimelineObjectRef{},
		&domain.CacheItem{}, &domain.AppSetting{},
	)
	return db
}

// mockApp 테스트용 프로젝트 앱 플러그인
type mockApp struct {
	name        string
	defs        []plugin.SettingDef
	links       map[string]*plugin.ObjectLink // objectUUID -> link
	cacheCalls  []string
	cacheErr    error
	updateNames []string
}

func (m *mockApp) Name() string                       { return m.name }
func (m *mockApp) Title() string                      { return m.name }
func (m *mockApp) Icon() string                       { return "cube" }
func (m *mockApp) SettingDefs() []plugin.SettingDef   { return m.defs }
func (m *mockApp) Ordering() int                      { return 10 }
func (m *mockApp) RegisterRoutes(gin.IRouter)         {}
func (m *mockApp) GetObjectLink(objModel, objUUID string) *plugin.ObjectLink {
	return m.links[objUUID]
}
func (m *mockApp) UpdateCache(name, projectUUID, userID string) error {
	m.cacheCalls = append(m.cacheCalls, projectUUID)
	m.updateNames = append(m.updateNames, name)
	return m.cacheErr
}

func setupRegistry(t *testing.T, db *gorm.DB, apps ...*mockApp) *plugin.Registry {
	t.Helper()
	stateRepo := repository.NewPluginStateRepository(db)
	registry := plugin.NewRegistry(stateRepo, []string{"timeline", "appcache"}, plugin.NopLogger{})
	registry.AddInstalledApp("core")
	for _, app := range apps {
		if err := registry.Register(plugin.TypeProjectApp, app); err != nil {
			t.Fatalf("failed to register plugin: %v", err)
		}
	}
	if err := registry.SyncStates(); err != nil {
		t.Fatalf("failed to sync states: %v", err)
	}
	return registry
}

func createProject(t *testing.T, db *gorm.DB, title string) *domain.Project {
	t.Helper()
	project := &domain.Project{Title: title, Type: domain.ProjectTypeProject}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

func createUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Name: username}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func setupTimeline(t *testing.T, apps ...*mockApp) (*TimelineService, *repository.TimelineRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	registry := setupRegistry(t, db, apps...)
	repo := repository.NewTimelineRepository(db)
	return NewTimelineService(repo, registry, plugin.NopLogger{}, 0), repo, db
}

func TestAddEventCreatesInitStatus(t *testing.T) {
	app := &mockApp{name: "samples"}
	svc, repo, db := setupTimeline(t, app)
	project := createProject(t, db, "Test Project")
	user := createUser(t, db, "alice")

	event, err := svc.AddEvent(EventParams{
		Project:     project,
		AppName:     "samples",
		User:        user,
		EventName:   "sample_create",
		Description: "create sample",
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if event.UUID == "" {
		t.Error("event must have a UUID")
	}

	statuses, err := repo.GetStatusChanges(event.ID)
	if err != nil {
		t.Fatalf("GetStatusChanges failed: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].StatusType != domain.StatusInit {
		t.Errorf("expected INIT status, got %s", statuses[0].StatusType)
	}
	if statuses[0].Description != InitStatusDesc {
		t.Errorf("expected fixed init description, got %q", statuses[0].Description)
	}
}

func TestAddEventRejectsBeforeWrite(t *testing.T) {
	svc, repo, _ := setupTimeline(t, &mockApp{name: "samples"})

	_, err := svc.AddEvent(EventParams{
		AppName:   "ghostapp",
		EventName: "x",
	})
	if !errors.Is(err, common.ErrInvalidAppName) {
		t.Errorf("expected ErrInvalidAppName, got %v", err)
	}

	_, err = svc.AddEvent(EventParams{
		AppName:    "samples",
		EventName:  "x",
		StatusType: "RUNNING",
	})
	if !errors.Is(err, common.ErrInvalidStatusType) {
		t.Errorf("expected ErrInvalidStatusType, got %v", err)
	}

	// 거부된 호출은 어떤 행도 남기지 않음
	count, _ := repo.CountEvents()
	if count != 0 {
		t.Errorf("expected no events after rejections, got %d", count)
	}
	count, _ = repo.CountStatuses()
	if count != 0 {
		t.Errorf("expected no statuses after rejections, got %d", count)
	}
}

func TestAddEventNormalizesAnonymousUser(t *testing.T) {
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	for _, user := range []*domain.User{nil, {}} {
		event, err := svc.AddEvent(EventParams{
			Project:   project,
			AppName:   "samples",
			User:      user,
			EventName: "anon_event",
		})
		if err != nil {
			t.Fatalf("AddEvent failed: %v", err)
		}
		if event.UserID != nil {
			t.Errorf("anonymous user must persist as NULL, got %v", *event.UserID)
		}
	}
}

func TestSetStatusAppendsHistory(t *testing.T) {
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	event, err := svc.AddEvent(EventParams{
		Project: project, AppName: "samples", EventName: "job",
		StatusType: domain.StatusSubmit, StatusDesc: "submitted",
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	if _, err := svc.SetStatus(event, domain.StatusOK, "done", nil); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if _, err := svc.SetStatus(event, "BOGUS", "", nil); !errors.Is(err, common.ErrInvalidStatusType) {
		t.Errorf("expected ErrInvalidStatusType, got %v", err)
	}

	statuses, err := svc.GetStatusChanges(event)
	if err != nil {
		t.Fatalf("GetStatusChanges failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].StatusType != domain.StatusSubmit || statuses[1].StatusType != domain.StatusOK {
		t.Errorf("history must preserve insertion order, got %s -> %s",
			statuses[0].StatusType, statuses[1].StatusType)
	}

	current, err := svc.GetStatus(event)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if current.StatusType != domain.StatusOK {
		t.Errorf("current status must be the latest row, got %s", current.StatusType)
	}
}

func TestAddObjectSubstitutesEmptyName(t *testing.T) {
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	event, err := svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "x"})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}

	ref, err := svc.AddObject(event, "target", "", "Sample", "uuid-1", nil)
	if err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}
	if ref.Name != domain.UnnamedObject {
		t.Errorf("empty name must be substituted, got %q", ref.Name)
	}
}

func TestRenderDescription(t *testing.T) {
	app := &mockApp{
		name: "samples",
		links: map[string]*plugin.ObjectLink{
			"uuid-linked": {Name: "linked", URL: "/samples/uuid-linked"},
		},
	}
	svc, _, db := setupTimeline(t, app)
	project := createProject(t, db, "Test Project")

	event, err := svc.AddEvent(EventParams{
		Project: project, AppName: "samples", EventName: "update",
		Description: "update {linked} and {plain} keep {ghost}",
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if _, err := svc.AddObject(event, "linked", "Linked <Item>", "Sample", "uuid-linked", nil); err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}
	if _, err := svc.AddObject(event, "plain", "Plain Item", "Sample", "uuid-plain", nil); err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}

	rendered := svc.RenderDescription(event)
	if !strings.Contains(rendered, `<a href="/samples/uuid-linked">Linked &lt;Item&gt;</a>`) {
		t.Errorf("linked ref must render as escaped anchor, got %q", rendered)
	}
	if !strings.Contains(rendered, "Plain Item") {
		t.Errorf("unlinked ref must render as plain name, got %q", rendered)
	}
	if !strings.Contains(rendered, "{ghost}") {
		t.Errorf("token without ref must stay verbatim, got %q", rendered)
	}
}

func TestRenderDescriptionPluginError(t *testing.T) {
	// "core"는 설치된 앱이지만 플러그인이 아니므로 해석 불가
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	event, err := svc.AddEvent(EventParams{
		Project: project, AppName: "core", EventName: "x",
		Description: "touch {obj}",
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if _, err := svc.AddObject(event, "obj", "Some Object", "Sample", "uuid-x", nil); err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}

	rendered := svc.RenderDescription(event)
	if !strings.Contains(rendered, PluginErrorMarker) {
		t.Errorf("unresolvable plugin must render inline marker, got %q", rendered)
	}
}

func TestRenderDescriptionPluginOverride(t *testing.T) {
	app := &mockApp{
		name:  "samples",
		links: map[string]*plugin.ObjectLink{"uuid-1": {Name: "n", URL: "/x"}},
	}
	svc, _, db := setupTimeline(t, app)
	project := createProject(t, db, "Test Project")

	// 이벤트 앱은 core지만 plugin 오버라이드로 samples가 해석됨
	event, err := svc.AddEvent(EventParams{
		Project: project, AppName: "core", PluginName: "samples",
		EventName: "x", Description: "touch {obj}",
	})
	if err != nil {
		t.Fatalf("AddEvent failed: %v", err)
	}
	if _, err := svc.AddObject(event, "obj", "Obj", "Sample", "uuid-1", nil); err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}

	rendered := svc.RenderDescription(event)
	if strings.Contains(rendered, PluginErrorMarker) {
		t.Errorf("plugin override must resolve, got %q", rendered)
	}
	if !strings.Contains(rendered, `<a href="/x">`) {
		t.Errorf("expected anchor from override plugin, got %q", rendered)
	}
}

func TestFindSearchesAcrossFields(t *testing.T) {
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	byName, _ := svc.AddEvent(EventParams{
		Project: project, AppName: "samples", EventName: "sheet_import",
	})
	byDesc, _ := svc.AddEvent(EventParams{
		Project: project, AppName: "samples", EventName: "other",
		Description: "imported a sheet today",
	})
	byRef, _ := svc.AddEvent(EventParams{
		Project: project, AppName: "samples", EventName: "unrelated",
	})
	if _, err := svc.AddObject(byRef, "obj", "My Sheet File", "Sample", "uuid-9", nil); err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}
	svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "noise"})

	// "sheet import"는 밑줄 변환으로 sheet_import와 일치
	events, err := svc.Find([]string{"sheet import", "sheet"}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	found := make(map[string]bool)
	for i := range events {
		found[events[i].UUID] = true
	}
	for _, want := range []*domain.TimelineEvent{byName, byDesc, byRef} {
		if !found[want.UUID] {
			t.Errorf("expected event %s in results", want.EventName)
		}
	}
	if len(events) != 3 {
		t.Errorf("expected 3 matches, got %d", len(events))
	}

	// 공백뿐인 검색어는 결과 없음
	events, err = svc.Find([]string{"  ", ""}, nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if events != nil {
		t.Errorf("blank terms must return nil, got %v", events)
	}
}

func TestListByProjectScopesAndClassified(t *testing.T) {
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "visible"})
	svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "secret", Classified: true})
	svc.AddEvent(EventParams{AppName: "samples", EventName: "sitewide"})

	events, err := svc.ListByProject(project, false, 0, 0)
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(events) != 1 || events[0].EventName != "visible" {
		t.Errorf("classified events must be excluded by default, got %v", events)
	}

	events, _ = svc.ListByProject(project, true, 0, 0)
	if len(events) != 2 {
		t.Errorf("classified listing must include both, got %d", len(events))
	}

	events, _ = svc.ListByProject(nil, false, 0, 0)
	if len(events) != 1 || events[0].EventName != "sitewide" {
		t.Errorf("nil project must list site-wide events only, got %v", events)
	}
}

func TestGetObjectEvents(t *testing.T) {
	svc, _, db := setupTimeline(t, &mockApp{name: "samples"})
	project := createProject(t, db, "Test Project")

	first, _ := svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "create"})
	second, _ := svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "update"})
	svc.AddEvent(EventParams{Project: project, AppName: "samples", EventName: "other"})

	svc.AddObject(first, "obj", "Obj", "Sample", "uuid-1", nil)
	svc.AddObject(second, "obj", "Obj", "Sample", "uuid-1", nil)

	events, err := svc.GetObjectEvents(project, "Sample", "uuid-1")
	if err != nil {
		t.Fatalf("GetObjectEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventName != "update" {
		t.Errorf("expected newest first, got %s", events[0].EventName)
	}
}
