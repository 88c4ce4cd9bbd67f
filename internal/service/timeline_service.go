package service

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
)

// InitStatusDesc 호출자가 초기 상태를 지정하지 않았을 때의 고정 메시지
const InitStatusDesc = "Event initialized"

// PluginErrorMarker 이벤트의 앱/플러그인을 해석할 수 없을 때
// 렌더링 결과에 삽입되는 인라인 마커 (렌더링은 절대 실패하지 않음)
const PluginErrorMarker = "(plugin error)"

// DefaultSearchLimit 검색 결과 상한 기본값
const DefaultSearchLimit = 250

// labelPattern 설명 내 {label} 토큰
var labelPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// EventParams AddEvent 입력
type EventParams struct {
	Project         *domain.Project        // nil이면 사이트 전역 이벤트
	AppName         string                 // 설치된 앱 이름이어야 함
	User            *domain.User           // nil/익명은 NULL로 정규화
	EventName       string
	Description     string                 // {label} 플레이스홀더 포함 가능
	Classified      bool
	ExtraData       map[string]interface{}
	StatusType      string                 // 비워두면 INIT 자동 생성
	StatusDesc      string
	StatusExtraData map[string]interface{}
	PluginName      string                 // 아이콘/링크 해석용 오버라이드
}

// TimelineService 추가 전용 감사 이벤트 저장 서비스
type TimelineService struct {
	repo        *repository.TimelineRepository
	registry    *plugin.Registry
	logger      plugin.Logger
	searchLimit int
}

// NewTimelineService 생성자. searchLimit이 0 이하이면 기본값 사용
func NewTimelineService(repo *repository.TimelineRepository, registry *plugin.Registry, logger plugin.Logger, searchLimit int) *TimelineService {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &TimelineService{
		repo:        repo,
		registry:    registry,
		logger:      logger,
		searchLimit: searchLimit,
	}
}

// AddEvent 이벤트 생성. 모든 검증은 영속 쓰기 전에 수행되므로
// 거부된 호출은 행을 남기지 않음. 호출자가 상태를 지정하지 않으면
// INIT 상태가 고정 메시지와 함께 자동 생성됨
func (s *TimelineService) AddEvent(p EventParams) (*domain.TimelineEvent, error) {
	if !s.registry.IsInstalled(p.AppName) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAppName, p.AppName)
	}

	statusType := p.StatusType
	statusDesc := p.StatusDesc
	if statusType == "" {
		statusType = domain.StatusInit
		if statusDesc == "" {
			statusDesc = InitStatusDesc
		}
	}
	if !domain.IsValidStatusType(statusType) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidStatusType, statusType)
	}

	extraData, err := domain.ToJSON(p.ExtraData)
	if err != nil {
		return nil, fmt.Errorf("%w: extra_data: %v", common.ErrInvalidDataType, err)
	}
	statusExtra, err := domain.ToJSON(p.StatusExtraData)
	if err != nil {
		return nil, fmt.Errorf("%w: status extra_data: %v", common.ErrInvalidDataType, err)
	}

	event := &domain.TimelineEvent{
		App:         p.AppName,
		Plugin:      p.PluginName,
		EventName:   p.EventName,
		Description: p.Description,
		ExtraData:   extraData,
		Classified:  p.Classified,
	}
	if p.Project != nil {
		event.ProjectID = &p.Project.ID
	}
	// 익명 사용자는 별도 사용자로 영속화하지 않음
	if !p.User.IsAnonymous() {
		event.UserID = &p.User.ID
	}

	status := &domain.TimelineEventStatus{
		StatusType:  statusType,
		Description: statusDesc,
		ExtraData:   statusExtra,
	}

	if err := s.repo.CreateWithStatus(event, status); err != nil {
		return nil, err
	}
	s.logger.Debug("Added event: %s/%s (%s)", p.AppName, p.EventName, event.UUID)
	return event, nil
}

// SetStatus 상태 이력에 행 추가. 기존 행은 변경/삭제되지 않으며
// 가장 최근 행이 현재 상태
func (s *TimelineService) SetStatus(event *domain.TimelineEvent, statusType, statusDesc string, extraData map[string]interface{}) (*domain.TimelineEventStatus, error) {
	if !domain.IsValidStatusType(statusType) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidStatusType, statusType)
	}
	extra, err := domain.ToJSON(extraData)
	if err != nil {
		return nil, fmt.Errorf("%w: extra_data: %v", common.ErrInvalidDataType, err)
	}

	status := &domain.TimelineEventStatus{
		EventID:     event.ID,
		StatusType:  statusType,
		Description: statusDesc,
		ExtraData:   extra,
	}
	if err := s.repo.AddStatus(status); err != nil {
		return nil, err
	}
	return status, nil
}

// AddObject 이벤트에 객체 참조 추가. name이 비어 있으면 대체 텍스트로
// 치환하고 경고만 남김 (복구 가능한 데이터 품질 문제이지 에러가 아님)
func (s *TimelineService) AddObject(event *domain.TimelineEvent, label, name, objectModel, objectUUID string, extraData map[string]interface{}) (*domain.TimelineObjectRef, error) {
	if name == "" {
		s.logger.Warn("Empty name for object ref %s on event %s, substituting %q", label, event.UUID, domain.UnnamedObject)
		name = domain.UnnamedObject
	}
	extra, err := domain.ToJSON(extraData)
	if err != nil {
		return nil, fmt.Errorf("%w: extra_data: %v", common.ErrInvalidDataType, err)
	}

	ref := &domain.TimelineObjectRef{
		EventID:     event.ID,
		Label:       label,
		Name:        name,
		ObjectModel: objectModel,
		ObjectUUID:  objectUUID,
		ExtraData:   extra,
	}
	if err := s.repo.AddObjectRef(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// GetStatusChanges 이벤트의 상태 이력 (삽입 순서)
func (s *TimelineService) GetStatusChanges(event *domain.TimelineEvent) ([]domain.TimelineEventStatus, error) {
	return s.repo.GetStatusChanges(event.ID)
}

// GetStatus 이벤트의 현재 상태 (가장 최근 행)
func (s *TimelineService) GetStatus(event *domain.TimelineEvent) (*domain.TimelineEventStatus, error) {
	return s.repo.GetCurrentStatus(event.ID)
}

// GetByUUID UUID로 이벤트 조회
func (s *TimelineService) GetByUUID(eventUUID string) (*domain.TimelineEvent, error) {
	return s.repo.GetByUUID(eventUUID)
}

// ListByProject 프로젝트별 이벤트 목록
func (s *TimelineService) ListByProject(project *domain.Project, classified bool, limit, offset int) ([]domain.TimelineEvent, error) {
	var projectID *int64
	if project != nil {
		projectID = &project.ID
	}
	return s.repo.ListByProject(projectID, classified, limit, offset)
}

// GetObjectEvents 주어진 객체를 참조하는 모든 이벤트 (최신순)
func (s *TimelineService) GetObjectEvents(project *domain.Project, objectModel, objectUUID string) ([]domain.TimelineEvent, error) {
	var projectID *int64
	if project != nil {
		projectID = &project.ID
	}
	return s.repo.GetObjectEvents(projectID, objectModel, objectUUID)
}

// Find 자유 검색. 검색어와 필드 전체에 걸쳐 OR 결합 (재현율 우선)
func (s *TimelineService) Find(terms []string, _ map[string]string) ([]domain.TimelineEvent, error) {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	return s.repo.Find(cleaned, s.searchLimit)
}

// RenderDescription 설명의 {label} 토큰을 객체 참조로 해석.
// 플러그인이 링크를 제공하면 앵커 태그, 아니면 일반 텍스트.
// 이벤트의 앱이 더 이상 알려진 플러그인과 일치하지 않으면 토큰 자리에
// 인라인 에러 마커를 넣고 나머지는 정상 완료함 (읽기 경로이므로 절대 실패 금지)
func (s *TimelineService) RenderDescription(event *domain.TimelineEvent) string {
	refs, err := s.repo.GetObjectRefs(event.ID)
	if err != nil {
		s.logger.Error("Failed to load object refs for event %s: %v", event.UUID, err)
		return event.Description
	}
	if len(refs) == 0 || !labelPattern.MatchString(event.Description) {
		return event.Description
	}

	refByLabel := make(map[string]*domain.TimelineObjectRef, len(refs))
	for i := range refs {
		refByLabel[refs[i].Label] = &refs[i]
	}

	pluginName := event.App
	if event.Plugin != "" {
		pluginName = event.Plugin
	}
	appPlugin := s.registry.GetPlugin(pluginName, "")

	return labelPattern.ReplaceAllStringFunc(event.Description, func(token string) string {
		label := strings.Trim(token, "{}")
		ref, ok := refByLabel[label]
		if !ok {
			// 참조 없는 토큰은 원문 유지
			return token
		}
		if appPlugin == nil {
			return PluginErrorMarker
		}
		if linker, ok := appPlugin.(plugin.ObjectLinker); ok {
			if link := linker.GetObjectLink(ref.ObjectModel, ref.ObjectUUID); link != nil && link.URL != "" {
				target := ""
				if link.Blank {
					target = ` target="_blank"`
				}
				return fmt.Sprintf(`<a href=%q%s>%s</a>`, link.URL, target, html.EscapeString(ref.Name))
			}
		}
		return ref.Name
	})
}
