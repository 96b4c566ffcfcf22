package service

import "errors"

var (
	ErrUserNil    = errors.New("user is nil")
	ErrSaveFailed = errors.New("could not save tasks")
)
