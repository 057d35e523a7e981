package verify

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"example.com/FtBench/pkg/executor"
	"example.com/FtBench/pkg/logger"
	"example.com/FtBench/pkg/models"
)

// 兼容 GNU md5sum 和 macOS/BSD md5 两种远端环境
const remoteDigestCmdTemplate = "if command -v md5sum >/dev/null 2>&1; then md5sum '%s'; elif command -v md5 >/dev/null 2>&1; then md5 '%s'; else echo 'no_md5_tool'; fi"

// RemoteExecError 远端摘要命令无法执行或超时
type RemoteExecError struct {
	Err error
}

func (e *RemoteExecError) Error() string {
	return fmt.Sprintf("远端摘要计算失败: %v", e.Err)
}

func (e *RemoteExecError) Unwrap() error {
	return e.Err
}

// MD5Verifier 通过远端命令执行能力比较本地与远端文件的 md5 摘要
// 远端路径按 家目录/remoteDir/文件名 解析,家目录通过 pwd 获取后缓存
type MD5Verifier struct {
	exec      executor.Executor
	remoteDir string

	homeMu sync.Mutex
	home   string
}

// New 创建校验器,remoteDir 为远端家目录下的相对目录
func New(exec executor.Executor, remoteDir string) *MD5Verifier {
	return &MD5Verifier{
		exec:      exec,
		remoteDir: strings.TrimPrefix(remoteDir, "/"),
	}
}

// Verify 计算本地与远端摘要
// 远端失败返回 RemoteExecError,本地读取失败原样返回
func (v *MD5Verifier) Verify(ctx context.Context, file models.FileSpec) (localDigest, remoteDigest string, err error) {
	localDigest, err = LocalDigest(file.LocalPath)
	if err != nil {
		return "", "", fmt.Errorf("计算本地摘要失败: %w", err)
	}

	remoteDigest, err = v.remoteFileDigest(ctx, file.Name)
	if err != nil {
		return localDigest, "", err
	}
	return localDigest, remoteDigest, nil
}

// LocalDigest 流式计算本地文件的 md5 摘要
func LocalDigest(localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// remoteHome 获取远端家目录
// ~ 会被本地 shell 解释,必须在远端解析出绝对路径
// 只缓存成功结果,临时故障不会影响后续文件的校验
func (v *MD5Verifier) remoteHome(ctx context.Context) (string, error) {
	v.homeMu.Lock()
	defer v.homeMu.Unlock()
	if v.home != "" {
		return v.home, nil
	}

	out, err := v.exec.Run(ctx, "pwd")
	if err != nil {
		return "", err
	}
	home := strings.TrimSpace(out)
	if home == "" {
		return "", fmt.Errorf("无法获取远端家目录")
	}
	v.home = home
	return home, nil
}

func (v *MD5Verifier) remoteFileDigest(ctx context.Context, filename string) (string, error) {
	home, err := v.remoteHome(ctx)
	if err != nil {
		return "", &RemoteExecError{Err: err}
	}

	remotePath := path.Join(home, v.remoteDir, filename)
	cmd := fmt.Sprintf(remoteDigestCmdTemplate, remotePath, remotePath)
	logger.Logger.Debug("正在获取远端摘要", "path", remotePath)

	out, err := v.exec.Run(ctx, cmd)
	if err != nil {
		return "", &RemoteExecError{Err: err}
	}
	digest, err := parseDigestOutput(out)
	if err != nil {
		return "", &RemoteExecError{Err: err}
	}
	return digest, nil
}

// parseDigestOutput 解析 md5sum / md5 的输出
// md5sum: "<digest>  <path>"
// macOS md5: "MD5 (<path>) = <digest>"
func parseDigestOutput(out string) (string, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("远端摘要命令没有输出")
	}
	if strings.Contains(out, "no_md5_tool") {
		return "", fmt.Errorf("远端未找到 md5 工具")
	}
	if strings.Contains(out, "=") {
		fields := strings.Split(out, "=")
		return strings.TrimSpace(fields[len(fields)-1]), nil
	}
	return strings.Fields(out)[0], nil
}
