package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Domain call validation errors (영속 쓰기 전에 검증되어 4xx로 변환됨)
	ErrInvalidAppName    = errors.New("app name not found in installed apps")
	ErrInvalidStatusType = errors.New("invalid event status type")
	ErrInvalidDataType   = errors.New("invalid data type")

	// Project errors
	ErrProjectNotFound = errors.New("project not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
