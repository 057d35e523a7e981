package file

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// EnsureDir 确保目录存在并返回其绝对路径
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", err
	}
	return abs, nil
}

// FreeSpace 返回路径所在文件系统的可用字节数
func FreeSpace(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	// Bavail 是非特权用户可用的块数
	return int64(st.Bavail) * st.Bsize, nil
}
