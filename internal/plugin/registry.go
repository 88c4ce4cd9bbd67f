package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// 레지스트리 에러
var (
	ErrInvalidCategory = errors.New("invalid plugin category")
	ErrInvalidStatus   = errors.New("invalid plugin status")
	ErrPluginNotFound  = errors.New("plugin not found")
	ErrDuplicateName   = errors.New("plugin name already registered")
)

// Registry 프로세스 전역 플러그인 레지스트리.
// 클래스 테이블은 기동 시 Register() 호출로 한 번 구성되고 이후 읽기 전용.
// 영속 상태 테이블은 조회마다 StateStore를 통해 읽으므로 상태 변경이
// 재시작 없이 다음 조회부터 반영됨
type Registry struct {
	mu              sync.RWMutex
	plugins         map[string]map[string]Plugin // category -> name -> plugin
	extraApps       []string
	store           StateStore
	enabledBackends map[string]bool
	logger          Logger
}

// NewRegistry 새 레지스트리 생성. enabledBackends는 백엔드 플러그인
// 허용 목록 (설치됨 != 호출 가능; 운영자가 설정으로 명시적으로 opt-in)
func NewRegistry(store StateStore, enabledBackends []string, logger Logger) *Registry {
	allowed := make(map[string]bool, len(enabledBackends))
	for _, name := range enabledBackends {
		allowed[name] = true
	}
	plugins := make(map[string]map[string]Plugin, len(Types))
	for _, t := range Types {
		plugins[t] = make(map[string]Plugin)
	}
	return &Registry{
		plugins:         plugins,
		store:           store,
		enabledBackends: allowed,
		logger:          logger,
	}
}

// Register 플러그인 등록. 카테고리별 인터페이스 구현 여부와
// 설정 스키마를 등록 시점에 검증함
func (r *Registry) Register(category string, p Plugin) error {
	if !IsValidType(category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	switch category {
	case TypeProjectApp:
		if _, ok := p.(ProjectApp); !ok {
			return fmt.Errorf("plugin %s does not implement ProjectApp", p.Name())
		}
	case TypeSiteApp:
		if _, ok := p.(SiteApp); !ok {
			return fmt.Errorf("plugin %s does not implement SiteApp", p.Name())
		}
	case TypeBackend:
		if _, ok := p.(Backend); !ok {
			return fmt.Errorf("plugin %s does not implement Backend", p.Name())
		}
	}

	defs := p.SettingDefs()
	seen := make(map[string]bool, len(defs))
	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		if seen[defs[i].Name] {
			return fmt.Errorf("plugin %s: duplicate setting name %q", p.Name(), defs[i].Name)
		}
		seen[defs[i].Name] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 이름은 카테고리와 무관하게 전역 유일
	for _, table := range r.plugins {
		if _, exists := table[p.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name())
		}
	}

	r.plugins[category][p.Name()] = p
	if r.logger != nil {
		r.logger.Info("Registered plugin: %s (%s)", p.Name(), category)
	}
	return nil
}

// AddInstalledApp 플러그인이 아닌 앱 이름 등록 (app_name 검증용)
func (r *Registry) AddInstalledApp(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extraApps = append(r.extraApps, name)
}

// SyncStates 등록된 모든 플러그인의 상태 레코드 생성 보장.
// 최초 동기화 시 enabled로 생성되고 이후 관리자가 토글할 수 있음
func (r *Registry) SyncStates() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for category, table := range r.plugins {
		for name := range table {
			if err := r.store.EnsureState(name, category); err != nil {
				return fmt.Errorf("failed to sync state for plugin %s: %w", name, err)
			}
		}
	}
	return nil
}

// GetActivePlugins 카테고리 내 활성 플러그인 조회.
// 카테고리에 등록된 플러그인이 하나도 없으면 nil 슬라이스 반환
// (빈 슬라이스는 "등록됐지만 활성 없음"을 의미).
// 백엔드 플러그인은 영속 상태가 enabled여도 허용 목록에 있어야 포함됨.
// 정렬은 이름 알파벳순, customOrder=true이고 project_app 카테고리인 경우
// Ordering() 오름차순 (동률은 등록 순서 유지)
func (r *Registry) GetActivePlugins(category string, customOrder bool) ([]Plugin, error) {
	if !IsValidType(category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	r.mu.RLock()
	table := r.plugins[category]
	registered := make([]Plugin, 0, len(table))
	for _, p := range table {
		registered = append(registered, p)
	}
	r.mu.RUnlock()

	if len(registered) == 0 {
		return nil, nil
	}

	statuses, err := r.store.GetStatuses(category)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin states: %w", err)
	}

	// 등록 순서가 안정 정렬의 기준이 되도록 먼저 이름순 정렬
	sort.Slice(registered, func(i, j int) bool {
		return registered[i].Name() < registered[j].Name()
	})

	active := make([]Plugin, 0, len(registered))
	for _, p := range registered {
		if statuses[p.Name()] != StatusEnabled {
			continue
		}
		if category == TypeBackend && !r.enabledBackends[p.Name()] {
			continue
		}
		active = append(active, p)
	}

	if customOrder && category == TypeProjectApp {
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].(ProjectApp).Ordering() < active[j].(ProjectApp).Ordering()
		})
	}
	return active, nil
}

// GetPlugin 이름으로 플러그인 조회. category가 빈 문자열이면 전체
// 카테고리를 고정 순서(project_app, site_app, backend)로 검색.
// 미등록 플러그인은 예외 상황이 아니므로 nil 반환
func (r *Registry) GetPlugin(name, category string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if category != "" {
		return r.plugins[category][name]
	}
	for _, t := range Types {
		if p, exists := r.plugins[t][name]; exists {
			return p
		}
	}
	return nil
}

// GetBackendAPI 백엔드 플러그인의 API 객체 조회.
// 허용 목록에 없으면 force=true가 아닌 한 (nil, nil).
// 미등록이거나 영속 상태가 enabled가 아니어도 (nil, nil).
// 백엔드 자체의 GetAPI 에러는 그대로 전파됨 (호출자 처리 책임)
func (r *Registry) GetBackendAPI(name string, force bool, opts map[string]interface{}) (interface{}, error) {
	if !r.enabledBackends[name] && !force {
		return nil, nil
	}

	r.mu.RLock()
	p, exists := r.plugins[TypeBackend][name]
	r.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	status, err := r.store.GetStatus(name, TypeBackend)
	if err != nil || status != StatusEnabled {
		return nil, nil
	}

	return p.(Backend).GetAPI(opts)
}

// ChangeStatus 영속 상태 변경 (관리용). 해당 카테고리에 등록되지
// 않은 플러그인이면 ErrPluginNotFound
func (r *Registry) ChangeStatus(name, category, status string) error {
	if !IsValidType(category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if !IsValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.RLock()
	_, exists := r.plugins[category][name]
	r.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s (%s)", ErrPluginNotFound, name, category)
	}

	if err := r.store.SetStatus(name, category, status); err != nil {
		return err
	}
	if r.logger != nil {
		r.logger.Info("Changed plugin status: %s (%s) -> %s", name, category, status)
	}
	return nil
}

// GetStatus 플러그인의 영속 상태 조회
func (r *Registry) GetStatus(name, category string) (string, error) {
	if !IsValidType(category) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return r.store.GetStatus(name, category)
}

// InstalledApps 설치된 앱 이름 목록 (전체 카테고리의 플러그인 + 추가 등록 앱)
func (r *Registry) InstalledApps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, table := range r.plugins {
		for name := range table {
			names = append(names, name)
		}
	}
	names = append(names, r.extraApps...)
	sort.Strings(names)
	return names
}

// IsInstalled 앱 이름이 설치된 앱에 해당하는지 확인
func (r *Registry) IsInstalled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, table := range r.plugins {
		if _, exists := table[name]; exists {
			return true
		}
	}
	for _, extra := range r.extraApps {
		if extra == name {
			return true
		}
	}
	return false
}

// GetSettingDef 플러그인의 설정 스키마 조회
func (r *Registry) GetSettingDef(pluginName, settingName string) (*SettingDef, error) {
	p := r.GetPlugin(pluginName, "")
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, pluginName)
	}
	for _, def := range p.SettingDefs() {
		if def.Name == settingName {
			d := def
			// 파생 필드가 확정된 사본 반환
			if err := d.Validate(); err != nil {
				return nil, err
			}
			return &d, nil
		}
	}
	return nil, fmt.Errorf("setting %s not defined by plugin %s", settingName, pluginName)
}
