package plugin

import (
	"github.com/gin-gonic/gin"
)

// 플러그인 카테고리
const (
	TypeProjectApp = "project_app"
	TypeSiteApp    = "site_app"
	TypeBackend    = "backend"
)

// Types 레지스트리가 인식하는 카테고리 목록 (GetPlugin 전체 검색 순서)
var Types = []string{TypeProjectApp, TypeSiteApp, TypeBackend}

// 플러그인 영속 상태 (plugin_states 테이블)
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
	StatusRemoved  = "removed"
)

// IsValidStatus 상태 값 검증
func IsValidStatus(status string) bool {
	switch status {
	case StatusEnabled, StatusDisabled, StatusRemoved:
		return true
	}
	return false
}

// IsValidType 카테고리 값 검증
func IsValidType(pluginType string) bool {
	switch pluginType {
	case TypeProjectApp, TypeSiteApp, TypeBackend:
		return true
	}
	return false
}

// Plugin 모든 플러그인 공통 인터페이스
type Plugin interface {
	// Name 플러그인 이름 (전역 유일 키)
	Name() string

	// Title UI 표시용 제목
	Title() string

	// Icon UI 아이콘 이름
	Icon() string

	// SettingDefs 플러그인이 선언하는 설정 스키마 목록
	SettingDefs() []SettingDef
}

// ProjectApp 프로젝트 내부 UI를 제공하는 플러그인
type ProjectApp interface {
	Plugin

	// Ordering 커스텀 정렬 순서 (낮을수록 먼저)
	Ordering() int

	// RegisterRoutes 라우트 등록
	RegisterRoutes(r gin.IRouter)
}

// SiteApp 프로젝트 외부 UI를 제공하는 플러그인
type SiteApp interface {
	Plugin

	// RegisterRoutes 라우트 등록
	RegisterRoutes(r gin.IRouter)
}

// Backend UI 없이 서비스 API만 제공하는 플러그인
type Backend interface {
	Plugin

	// GetAPI 백엔드 API 객체 반환. 생성 실패 에러는 호출자에게 그대로 전파됨
	GetAPI(opts map[string]interface{}) (interface{}, error)
}

// SearchResult 플러그인 검색 결과 항목
type SearchResult struct {
	Title       string `json:"title"`
	ObjectModel string `json:"object_model"`
	ObjectUUID  string `json:"object_uuid"`
	ProjectUUID string `json:"project_uuid,omitempty"`
}

// Searchable 선택적 인터페이스 - 검색 기능을 제공하는 플러그인이 구현
type Searchable interface {
	Search(terms []string, keywords map[string]string) ([]SearchResult, error)
}

// CacheUpdater 선택적 인터페이스 - 캐시 항목 갱신 훅을 제공하는 플러그인이 구현.
// name이 빈 문자열이면 플러그인의 모든 항목, projectUUID가 빈 문자열이면 전체 프로젝트 대상
type CacheUpdater interface {
	UpdateCache(name, projectUUID, userID string) error
}

// ObjectLink 타임라인 객체 참조 링크
type ObjectLink struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Blank bool   `json:"blank"`
}

// ObjectLinker 선택적 인터페이스 - 타임라인 설명 렌더링 시 객체 링크를 제공
type ObjectLinker interface {
	// GetObjectLink 링크를 만들 수 없으면 nil 반환
	GetObjectLink(objModel, objUUID string) *ObjectLink
}

// ProjectLifecycleAware 선택적 인터페이스 - 프로젝트 생성/수정 이벤트 수신
type ProjectLifecycleAware interface {
	OnProjectCreate(projectUUID string) error
	OnProjectUpdate(projectUUID string) error
}

// StateStore 플러그인 상태 영속화 인터페이스 (순환 의존 방지)
type StateStore interface {
	// EnsureState 상태 레코드가 없으면 기본 상태(enabled)로 생성
	EnsureState(name, category string) error

	// GetStatus 상태 조회. 레코드가 없으면 ErrPluginNotFound
	GetStatus(name, category string) (string, error)

	// SetStatus 상태 변경. 레코드가 없으면 ErrPluginNotFound
	SetStatus(name, category, status string) error

	// GetStatuses 카테고리 전체 상태 조회 (name -> status)
	GetStatuses(category string) (map[string]string, error)
}
