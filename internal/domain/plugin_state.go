package domain

import "time"

// PluginState 플러그인의 영속 상태 레코드.
// 인프로세스 클래스 테이블과 이름+카테고리로 조인되어 활성 집합을 결정함.
// 최초 동기화 시 생성되고 명시적 제거 외에는 삭제되지 않음
type PluginState struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex:uk_plugin_state" json:"name"`
	Category  string    `gorm:"size:20;uniqueIndex:uk_plugin_state" json:"category"` // project_app, site_app, backend
	Status    string    `gorm:"size:16;default:enabled" json:"status"`               // enabled, disabled, removed
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName GORM 테이블명
func (PluginState) TableName() string {
	return "plugin_states"
}
