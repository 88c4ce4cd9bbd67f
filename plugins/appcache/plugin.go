// Package appcache 캐시 항목 저장소를 백엔드 플러그인으로 노출
package appcache

import (
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// BackendPlugin 캐시 백엔드 플러그인
type BackendPlugin struct {
	svc *service.CacheService
}

// New 새 캐시 백엔드 플러그인 생성
func New(svc *service.CacheService) *BackendPlugin {
	return &BackendPlugin{svc: svc}
}

// Name 플러그인 이름
func (p *BackendPlugin) Name() string { return "appcache" }

// Title UI 표시용 제목
func (p *BackendPlugin) Title() string { return "App Cache" }

// Icon UI 아이콘 이름
func (p *BackendPlugin) Icon() string { return "database" }

// SettingDefs 설정 스키마 없음
func (p *BackendPlugin) SettingDefs() []plugin.SettingDef { return nil }

// GetAPI 캐시 서비스 반환
func (p *BackendPlugin) GetAPI(_ map[string]interface{}) (interface{}, error) {
	return p.svc, nil
}

var _ plugin.Backend = (*BackendPlugin)(nil)
