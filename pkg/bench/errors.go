package bench

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"example.com/FtBench/pkg/models"
)

// ErrNoFiles 没有任何可测试的文件,无法开始运行
var ErrNoFiles = errors.New("没有可用的测试文件")

// UnreachableError 首个文件在重试预算耗尽后仍无法传输
// 持续的连通性故障应当中止运行,而不是给每个文件记录一次相同的失败
type UnreachableError struct {
	Attempts int
	Kind     models.ErrorKind
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("目标不可达(尝试 %d 次, %s): %v", e.Attempts, e.Kind, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// classifyTransferError 把传输错误归入错误分类
// 分类只依赖错误本身,同样的故障重复运行会得到同样的分类
func classifyTransferError(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorKindNone
	}
	// 外部取消不是连通性故障,不能触发首文件重试
	if errors.Is(err, context.Canceled) {
		return models.ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrorKindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unable to authenticate"),
		strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "auth"):
		return models.ErrorKindAuth
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return models.ErrorKindTimeout
	default:
		// 拨号失败、握手失败、连接被重置等都算连接错误
		return models.ErrorKindConnect
	}
}

// classifyVerifyError 校验阶段的错误分类
// 本地摘要失败、远端命令失败和超时统一记作 remote_exec,校验无法完成
func classifyVerifyError(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorKindNone
	}
	return models.ErrorKindRemoteExec
}

// connectivityKind 判断该分类是否属于连通性故障
// 首文件重试预算只覆盖这类错误;部分传输说明链路是通的,不算
func connectivityKind(kind models.ErrorKind) bool {
	switch kind {
	case models.ErrorKindAuth, models.ErrorKindConnect, models.ErrorKindTimeout:
		return true
	}
	return false
}
