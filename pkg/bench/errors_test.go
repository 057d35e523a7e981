package bench

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"example.com/FtBench/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyTransferError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{"无错误", nil, models.ErrorKindNone},
		{"认证失败", errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [password]"), models.ErrorKindAuth},
		{"权限拒绝", errors.New("permission denied (publickey,password)"), models.ErrorKindAuth},
		{"连接拒绝", errors.New("dial tcp 10.0.0.1:22: connection refused"), models.ErrorKindConnect},
		{"上下文超时", context.DeadlineExceeded, models.ErrorKindTimeout},
		{"外部取消", context.Canceled, models.ErrorKindCanceled},
		{"包装后的取消", fmt.Errorf("上传 '1KB_1.dat' 失败: %w", context.Canceled), models.ErrorKindCanceled},
		{"消息含超时", errors.New("i/o timeout"), models.ErrorKindTimeout},
		{"未知错误归为连接", errors.New("connection reset by peer"), models.ErrorKindConnect},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyTransferError(tc.err))
		})
	}
}

func TestConnectivityKind(t *testing.T) {
	assert.True(t, connectivityKind(models.ErrorKindAuth))
	assert.True(t, connectivityKind(models.ErrorKindConnect))
	assert.True(t, connectivityKind(models.ErrorKindTimeout))
	assert.False(t, connectivityKind(models.ErrorKindPartial))
	assert.False(t, connectivityKind(models.ErrorKindCanceled))
	assert.False(t, connectivityKind(models.ErrorKindNone))
}
