package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"example.com/FtBench/pkg/logger"
	"example.com/FtBench/pkg/models"
	"example.com/FtBench/pkg/utils"
	"example.com/FtBench/pkg/utils/file"
)

// GenerationError 测试文件生成失败
// 缺少任何一个文件都无法完成基准测试,因此对整个运行是致命的
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("生成测试文件失败: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Generator 按配置规格生成测试文件
// 默认规格 (1KB/100MB/1GB/10GB × 10) 总计约 111GB,建议预留 110GB 以上空间
type Generator struct {
	scratchDir  string
	sparse      bool // 稀疏文件(全零),等价于 dd seek=SIZE;否则写入确定性伪随机内容
	concurrency uint
}

type Option func(*Generator)

// WithSparse 生成稀疏全零文件而不是伪随机内容
func WithSparse(sparse bool) Option {
	return func(g *Generator) { g.sparse = sparse }
}

// WithConcurrency 并发生成的文件数
func WithConcurrency(n uint) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

func New(scratchDir string, opts ...Option) *Generator {
	g := &Generator{
		scratchDir:  scratchDir,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Plan 根据规格列表生成 FileSpec 集合
// 文件名形如 100MB_1.dat,同规格按序号递增,保证全局唯一
func (g *Generator) Plan(sizes []string, countPerSize int) ([]models.FileSpec, error) {
	if countPerSize <= 0 {
		return nil, &GenerationError{Err: fmt.Errorf("count_per_size 必须为正数")}
	}
	specs := make([]models.FileSpec, 0, len(sizes)*countPerSize)
	seen := make(map[string]bool)
	for _, sizeName := range sizes {
		sizeBytes, err := ParseSize(sizeName)
		if err != nil {
			return nil, &GenerationError{Err: err}
		}
		for i := 1; i <= countPerSize; i++ {
			name := fmt.Sprintf("%s_%d.dat", sizeName, i)
			if seen[name] {
				return nil, &GenerationError{Err: fmt.Errorf("重复的文件名: %s", name)}
			}
			seen[name] = true
			specs = append(specs, models.FileSpec{
				Name:      name,
				SizeBytes: sizeBytes,
				LocalPath: filepath.Join(g.scratchDir, name),
			})
		}
	}
	return specs, nil
}

// Generate 实际写入测试文件,长度严格等于规格
// 生成不计入传输测量,可以并发执行;任何一个文件失败都返回 GenerationError
func (g *Generator) Generate(ctx context.Context, specs []models.FileSpec) error {
	dir, err := file.EnsureDir(g.scratchDir)
	if err != nil {
		return &GenerationError{Err: fmt.Errorf("创建临时目录失败: %w", err)}
	}
	g.scratchDir = dir

	// 磁盘空间预检: 稀疏文件不实际占用空间,跳过检查
	if !g.sparse {
		var total int64
		for _, spec := range specs {
			total += spec.SizeBytes
		}
		free, err := file.FreeSpace(dir)
		if err != nil {
			logger.Logger.Warn("无法获取磁盘可用空间,跳过预检", "error", err)
		} else if free < total {
			return &GenerationError{Err: fmt.Errorf(
				"磁盘空间不足: 需要 %s,可用 %s",
				models.FormatBytes(total), models.FormatBytes(free))}
		}
	}

	wp := utils.NewWorkerPool(g.concurrency)
	var mu sync.Mutex
	var firstErr error
	for _, spec := range specs {
		wp.Execute(func() {
			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}
			logger.Logger.Info("正在生成文件", "name", spec.Name, "size", spec.SizeBytes)
			if err := g.writeFile(spec); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", spec.Name, err)
				}
				mu.Unlock()
			}
		})
	}
	wp.Wait()

	if firstErr != nil {
		return &GenerationError{Err: firstErr}
	}
	if err := ctx.Err(); err != nil {
		return &GenerationError{Err: err}
	}
	return nil
}

func (g *Generator) writeFile(spec models.FileSpec) error {
	f, err := os.OpenFile(spec.LocalPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if g.sparse {
		// 等价于 dd if=/dev/zero bs=1 count=0 seek=SIZE
		if err := f.Truncate(spec.SizeBytes); err != nil {
			return err
		}
		return f.Sync()
	}

	// 确定性伪随机内容,以文件名为种子
	// 同名文件内容可复现,不同文件摘要各不相同,便于发现远端串写
	h := fnv.New64a()
	_, _ = h.Write([]byte(spec.Name))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	buf := make([]byte, 1<<20)
	remaining := spec.SizeBytes
	for remaining > 0 {
		chunk := buf
		if remaining < int64(len(buf)) {
			chunk = buf[:remaining]
		}
		rng.Read(chunk)
		if _, err := f.Write(chunk); err != nil {
			return err
		}
		remaining -= int64(len(chunk))
	}
	return f.Sync()
}
