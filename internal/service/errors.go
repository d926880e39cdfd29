package service

import (
	"errors"
	"strings"
	"unicode"

	"allowance/internal/repository"
)

var (
	ErrNotParent        = errors.New("调用方不是已注册家长")
	ErrInvalidAmount    = errors.New("金额必须大于0")
	ErrInvalidPrincipal = errors.New("身份标识不合法")
	ErrSystemBusy       = errors.New("系统繁忙，请稍后重试")

	ErrTransactionNotFound = errors.New("流水不存在")

	ErrAllowanceNotFound     = repository.ErrAllowanceNotFound
	ErrInsufficientAllowance = repository.ErrInsufficientAllowance
	ErrOptimisticLock        = repository.ErrOptimisticLock
)

const maxPrincipalLen = 128

// ValidatePrincipal 身份标识非空、不超过 128 字节、不含空白字符
func ValidatePrincipal(principal string) error {
	if principal == "" || len(principal) > maxPrincipalLen {
		return ErrInvalidPrincipal
	}
	if strings.IndexFunc(principal, unicode.IsSpace) >= 0 {
		return ErrInvalidPrincipal
	}
	return nil
}
