package service

import (
	"errors"
	"fmt"

	"github.com/yuqie6/dsatrack/internal/observability"
)

// 错误类别，调用方通过 errors.Is 判断
var (
	ErrInvalidArgument = errors.New("参数无效")
	ErrStorage         = errors.New("存储失败")
	ErrMalformedState  = errors.New("存储状态异常")
	ErrNotFound        = errors.New("资源不存在")
	ErrConflict        = errors.New("资源已存在")
)

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// storageErr 包装存储层错误并计数
func storageErr(op string, err error) error {
	observability.StorageErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
