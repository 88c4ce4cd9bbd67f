package plugin

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// fakeStateStore 메모리 기반 StateStore 구현
type fakeStateStore struct {
	states map[string]string // "name/category" -> status
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]string)}
}

func stateKey(name, category string) string {
	return fmt.Sprintf("%s/%s", name, category)
}

func (s *fakeStateStore) EnsureState(name, category string) error {
	key := stateKey(name, category)
	if _, exists := s.states[key]; !exists {
		s.states[key] = StatusEnabled
	}
	return nil
}

func (s *fakeStateStore) GetStatus(name, category string) (string, error) {
	status, exists := s.states[stateKey(name, category)]
	if !exists {
		return "", ErrPluginNotFound
	}
	return status, nil
}

func (s *fakeStateStore) SetStatus(name, category, status string) error {
	key := stateKey(name, category)
	if _, exists := s.states[key]; !exists {
		return ErrPluginNotFound
	}
	s.states[key] = status
	return nil
}

func (s *fakeStateStore) GetStatuses(category string) (map[string]string, error) {
	result := make(map[string]string)
	for key, status := range s.states {
		parts := strings.SplitN(key, "/", 2)
		if len(parts) == 2 && parts[1] == category {
			result[parts[0]] = status
		}
	}
	return result, nil
}

// testApp ProjectApp 테스트 구현
type testApp struct {
	name     string
	ordering int
	defs     []SettingDef
}

func (p *testApp) Name() string               { return p.name }
func (p *testApp) Title() string              { return p.name }
func (p *testApp) Icon() string               { return "cube" }
func (p *testApp) SettingDefs() []SettingDef  { return p.defs }
func (p *testApp) Ordering() int              { return p.ordering }
func (p *testApp) RegisterRoutes(gin.IRouter) {}

// testBackend Backend 테스트 구현
type testBackend struct {
	name   string
	api    interface{}
	apiErr error
}

func (p *testBackend) Name() string              { return p.name }
func (p *testBackend) Title() string             { return p.name }
func (p *testBackend) Icon() string              { return "gear" }
func (p *testBackend) SettingDefs() []SettingDef { return nil }
func (p *testBackend) GetAPI(map[string]interface{}) (interface{}, error) {
	return p.api, p.apiErr
}

func newTestRegistry(enabledBackends ...string) (*Registry, *fakeStateStore) {
	store := newFakeStateStore()
	return NewRegistry(store, enabledBackends, NopLogger{}), store
}

func TestRegisterAndGetPlugin(t *testing.T) {
	reg, _ := newTestRegistry()
	app := &testApp{name: "samples"}
	if err := reg.Register(TypeProjectApp, app); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got := reg.GetPlugin("samples", TypeProjectApp); got != app {
		t.Error("GetPlugin with category must return registered plugin")
	}
	if got := reg.GetPlugin("samples", ""); got != app {
		t.Error("GetPlugin without category must search all categories")
	}
	if got := reg.GetPlugin("missing", ""); got != nil {
		t.Error("GetPlugin must return nil for unknown name")
	}
}

func TestRegisterRejectsWrongInterface(t *testing.T) {
	reg, _ := newTestRegistry()
	backend := &testBackend{name: "store"}
	if err := reg.Register(TypeProjectApp, backend); err == nil {
		t.Error("registering a backend as project_app must fail")
	}
}

func TestRegisterRejectsInvalidCategory(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.Register("widget", &testApp{name: "w"}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestRegisterRejectsDuplicateNameAcrossCategories(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.Register(TypeProjectApp, &testApp{name: "dup"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register(TypeBackend, &testBackend{name: "dup"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestRegisterValidatesSettingDefs(t *testing.T) {
	reg, _ := newTestRegistry()
	app := &testApp{
		name: "broken",
		defs: []SettingDef{{Name: "bad", Scope: "NOPE", Type: SettingTypeString}},
	}
	if err := reg.Register(TypeProjectApp, app); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected schema validation error, got %v", err)
	}
}

func TestGetActivePluginsNilVsEmpty(t *testing.T) {
	reg, _ := newTestRegistry()

	// 카테고리에 등록된 플러그인이 없으면 nil
	active, err := reg.GetActivePlugins(TypeSiteApp, false)
	if err != nil {
		t.Fatalf("GetActivePlugins failed: %v", err)
	}
	if active != nil {
		t.Errorf("expected nil for empty category, got %v", active)
	}

	// 등록됐지만 모두 비활성이면 빈 슬라이스
	app := &testApp{name: "samples"}
	if err := reg.Register(TypeProjectApp, app); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}
	if err := reg.ChangeStatus("samples", TypeProjectApp, StatusDisabled); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	active, err = reg.GetActivePlugins(TypeProjectApp, false)
	if err != nil {
		t.Fatalf("GetActivePlugins failed: %v", err)
	}
	if active == nil || len(active) != 0 {
		t.Errorf("expected empty slice for all-disabled category, got %v", active)
	}
}

func TestGetActivePluginsReflectsStatusWithoutRestart(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.Register(TypeProjectApp, &testApp{name: "samples"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}

	active, _ := reg.GetActivePlugins(TypeProjectApp, false)
	if len(active) != 1 {
		t.Fatalf("expected 1 active plugin, got %d", len(active))
	}

	if err := reg.ChangeStatus("samples", TypeProjectApp, StatusDisabled); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	active, _ = reg.GetActivePlugins(TypeProjectApp, false)
	if len(active) != 0 {
		t.Error("status change must be visible on next query")
	}
}

func TestGetActivePluginsOrdering(t *testing.T) {
	reg, _ := newTestRegistry()
	apps := []*testApp{
		{name: "zeta", ordering: 10},
		{name: "alpha", ordering: 30},
		{name: "mid", ordering: 20},
	}
	for _, app := range apps {
		if err := reg.Register(TypeProjectApp, app); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}

	active, _ := reg.GetActivePlugins(TypeProjectApp, false)
	names := pluginNames(active)
	if names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("default order must be alphabetical, got %v", names)
	}

	active, _ = reg.GetActivePlugins(TypeProjectApp, true)
	names = pluginNames(active)
	if names[0] != "zeta" || names[1] != "mid" || names[2] != "alpha" {
		t.Errorf("custom order must follow Ordering(), got %v", names)
	}
}

func pluginNames(plugins []Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
	}
	return names
}

func TestBackendAllowListFiltersActivePlugins(t *testing.T) {
	reg, _ := newTestRegistry("allowed")
	for _, name := range []string{"allowed", "blocked"} {
		if err := reg.Register(TypeBackend, &testBackend{name: name}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}

	active, err := reg.GetActivePlugins(TypeBackend, false)
	if err != nil {
		t.Fatalf("GetActivePlugins failed: %v", err)
	}
	if len(active) != 1 || active[0].Name() != "allowed" {
		t.Errorf("allow-list must filter backends, got %v", pluginNames(active))
	}
}

func TestGetBackendAPI(t *testing.T) {
	api := &struct{ v int }{v: 42}
	reg, _ := newTestRegistry("store")
	if err := reg.Register(TypeBackend, &testBackend{name: "store", api: api}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}

	got, err := reg.GetBackendAPI("store", false, nil)
	if err != nil {
		t.Fatalf("GetBackendAPI failed: %v", err)
	}
	if got != api {
		t.Error("expected backend API object")
	}

	// 허용 목록에 없으면 (nil, nil)
	got, err = reg.GetBackendAPI("missing", false, nil)
	if got != nil || err != nil {
		t.Errorf("unavailable backend must yield (nil, nil), got (%v, %v)", got, err)
	}

	// 비활성 상태면 (nil, nil)
	if err := reg.ChangeStatus("store", TypeBackend, StatusDisabled); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	got, err = reg.GetBackendAPI("store", false, nil)
	if got != nil || err != nil {
		t.Errorf("disabled backend must yield (nil, nil), got (%v, %v)", got, err)
	}
}

func TestGetBackendAPIForce(t *testing.T) {
	api := "api"
	reg, _ := newTestRegistry() // 허용 목록 비어 있음
	if err := reg.Register(TypeBackend, &testBackend{name: "store", api: api}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}

	got, err := reg.GetBackendAPI("store", false, nil)
	if got != nil || err != nil {
		t.Errorf("non-allow-listed backend must yield (nil, nil), got (%v, %v)", got, err)
	}
	got, err = reg.GetBackendAPI("store", true, nil)
	if err != nil || got != api {
		t.Errorf("force must bypass allow-list, got (%v, %v)", got, err)
	}
}

func TestGetBackendAPIPropagatesError(t *testing.T) {
	apiErr := errors.New("connection refused")
	reg, _ := newTestRegistry("store")
	if err := reg.Register(TypeBackend, &testBackend{name: "store", apiErr: apiErr}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.SyncStates(); err != nil {
		t.Fatalf("SyncStates failed: %v", err)
	}

	_, err := reg.GetBackendAPI("store", false, nil)
	if !errors.Is(err, apiErr) {
		t.Errorf("backend API errors must propagate, got %v", err)
	}
}

func TestChangeStatusUnknownPlugin(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.ChangeStatus("ghost", TypeProjectApp, StatusEnabled); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
	if err := reg.ChangeStatus("ghost", TypeProjectApp, "paused"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestInstalledApps(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.Register(TypeProjectApp, &testApp{name: "samples"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	reg.AddInstalledApp("core")

	if !reg.IsInstalled("samples") || !reg.IsInstalled("core") {
		t.Error("plugins and extra apps must both count as installed")
	}
	if reg.IsInstalled("ghost") {
		t.Error("unknown app must not count as installed")
	}

	apps := reg.InstalledApps()
	if len(apps) != 2 || apps[0] != "core" || apps[1] != "samples" {
		t.Errorf("expected sorted [core samples], got %v", apps)
	}
}

func TestGetSettingDefReturnsResolvedCopy(t *testing.T) {
	reg, _ := newTestRegistry()
	app := &testApp{
		name: "samples",
		defs: []SettingDef{{Name: "view", Scope: ScopeProjectUser, Type: SettingTypeString}},
	}
	if err := reg.Register(TypeProjectApp, app); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	def, err := reg.GetSettingDef("samples", "view")
	if err != nil {
		t.Fatalf("GetSettingDef failed: %v", err)
	}
	if def.IsUserModifiable() {
		t.Error("PROJECT_USER setting must resolve to non-modifiable")
	}
	if def.Default != "" {
		t.Errorf("STRING default must resolve to empty string, got %v", def.Default)
	}

	if _, err := reg.GetSettingDef("samples", "ghost"); err == nil {
		t.Error("unknown setting must fail")
	}
	if _, err := reg.GetSettingDef("ghost", "view"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}
