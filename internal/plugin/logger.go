package plugin

import (
	"fmt"
	"log"
)

// Logger 플러그인 프레임워크용 로거 인터페이스
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// DefaultLogger 표준 log 기반 기본 구현
type DefaultLogger struct {
	prefix string
}

// NewDefaultLogger 새 기본 로거 생성
func NewDefaultLogger(prefix string) *DefaultLogger {
	return &DefaultLogger{prefix: prefix}
}

// Debug 디버그 로그
func (l *DefaultLogger) Debug(msg string, args ...interface{}) {
	log.Printf("[DEBUG] [%s] %s", l.prefix, fmt.Sprintf(msg, args...))
}

// Info 정보 로그
func (l *DefaultLogger) Info(msg string, args ...interface{}) {
	log.Printf("[INFO] [%s] %s", l.prefix, fmt.Sprintf(msg, args...))
}

// Warn 경고 로그
func (l *DefaultLogger) Warn(msg string, args ...interface{}) {
	log.Printf("[WARN] [%s] %s", l.prefix, fmt.Sprintf(msg, args...))
}

// Error 에러 로그
func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	log.Printf("[ERROR] [%s] %s", l.prefix, fmt.Sprintf(msg, args...))
}

// NopLogger 출력 없는 로거 (테스트용)
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
