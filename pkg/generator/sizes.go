package generator

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize 解析 "1KB" / "100MB" / "10GB" 形式的文件规格
// 使用 1024 进制,与 dd 的 K/M/G 后缀一致
func ParseSize(s string) (int64, error) {
	token := strings.ToUpper(strings.TrimSpace(s))
	if token == "" {
		return 0, fmt.Errorf("文件规格不能为空")
	}

	multiplier := int64(1)
	for _, suffix := range []struct {
		text string
		mult int64
	}{
		{"TB", 1 << 40}, {"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10},
		{"T", 1 << 40}, {"G", 1 << 30}, {"M", 1 << 20}, {"K", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(token, suffix.text) {
			token = strings.TrimSuffix(token, suffix.text)
			multiplier = suffix.mult
			break
		}
	}

	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的文件规格 '%s': %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("文件规格必须为正数: '%s'", s)
	}
	size := n * multiplier
	if size/multiplier != n {
		return 0, fmt.Errorf("文件规格溢出: '%s'", s)
	}
	return size, nil
}
