// Package timeline 감사 이벤트 저장소를 백엔드 플러그인으로 노출
package timeline

import (
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// BackendPlugin 타임라인 백엔드 플러그인
type BackendPlugin struct {
	svc *service.TimelineService
}

// New 새 타임라인 백엔드 플러그인 생성
func New(svc *service.TimelineService) *BackendPlugin {
	return &BackendPlugin{svc: svc}
}

// Name 플러그인 이름
func (p *BackendPlugin) Name() string { return "timeline" }

// Title UI 표시용 제목
func (p *BackendPlugin) Title() string { return "Timeline" }

// Icon UI 아이콘 이름
func (p *BackendPlugin) Icon() string { return "clock" }

// SettingDefs 설정 스키마 없음
func (p *BackendPlugin) SettingDefs() []plugin.SettingDef { return nil }

// GetAPI 타임라인 서비스 반환
func (p *BackendPlugin) GetAPI(_ map[string]interface{}) (interface{}, error) {
	return p.svc, nil
}

// Search 이벤트 자유 검색
func (p *BackendPlugin) Search(terms []string, keywords map[string]string) ([]plugin.SearchResult, error) {
	events, err := p.svc.Find(terms, keywords)
	if err != nil {
		return nil, err
	}
	results := make([]plugin.SearchResult, 0, len(events))
	for i := range events {
		result := plugin.SearchResult{
			Title:       events[i].EventName,
			ObjectModel: "TimelineEvent",
			ObjectUUID:  events[i].UUID,
		}
		if events[i].Project != nil {
			result.ProjectUUID = events[i].Project.UUID
		}
		results = append(results, result)
	}
	return results, nil
}

var (
	_ plugin.Backend    = (*BackendPlugin)(nil)
	_ plugin.Searchable = (*BackendPlugin)(nil)
)
