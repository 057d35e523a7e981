package executor

import "context"

// Executor 命令执行能力的抽象
// 校验器通过它在远端计算摘要,测试时可以用假实现替换
type Executor interface {
	// Run 执行命令并返回输出
	Run(ctx context.Context, cmd string) (string, error)
}
