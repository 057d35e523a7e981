package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"example.com/FtBench/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCopier 可编程的远程复制假实现
type fakeCopier struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error)
}

func (f *fakeCopier) Copy(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, file, progress)
	}
	if progress != nil {
		progress(int(file.SizeBytes))
	}
	return file.SizeBytes, nil
}

func (f *fakeCopier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeVerifier 可编程的校验假实现,默认本地远端摘要一致
type fakeVerifier struct {
	fn func(file models.FileSpec) (string, string, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, file models.FileSpec) (string, string, error) {
	if f.fn != nil {
		return f.fn(file)
	}
	digest := "digest-" + file.Name
	return digest, digest, nil
}

func makeSpecs(sizes ...int64) []models.FileSpec {
	specs := make([]models.FileSpec, 0, len(sizes))
	for i, size := range sizes {
		specs = append(specs, models.FileSpec{
			Name:      fmt.Sprintf("f%d.dat", i+1),
			SizeBytes: size,
			LocalPath: fmt.Sprintf("/tmp/f%d.dat", i+1),
		})
	}
	return specs
}

func newTestOrchestrator(c Copier, v Verifier, opts Options) *Orchestrator {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	return New(c, v, opts, nil)
}

func TestRunNoFiles(t *testing.T) {
	orch := newTestOrchestrator(&fakeCopier{}, &fakeVerifier{}, Options{})
	result, err := orch.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Nil(t, result)
}

func TestRunOrdersFilesAscendingAndKeepsAllPairs(t *testing.T) {
	// 乱序输入,结果必须按大小升序且每个文件恰好一项
	specs := makeSpecs(10*1024*1024, 1024, 100*1024*1024, 4096)
	orch := newTestOrchestrator(&fakeCopier{}, &fakeVerifier{}, Options{})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, result.Pairs, len(specs))

	for i := 1; i < len(result.Pairs); i++ {
		assert.GreaterOrEqual(t,
			result.Pairs[i].Transfer.File.SizeBytes,
			result.Pairs[i-1].Transfer.File.SizeBytes)
	}
	// 输入切片不被修改
	assert.Equal(t, int64(10*1024*1024), specs[0].SizeBytes)
}

func TestRunAllSuccess(t *testing.T) {
	// 1MB/10MB/100MB 全部成功且摘要一致
	specs := makeSpecs(1<<20, 10<<20, 100<<20)
	orch := newTestOrchestrator(&fakeCopier{}, &fakeVerifier{}, Options{})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, result.Pairs, 3)

	assert.Equal(t, 1.0, result.Aggregates.SuccessRatio)
	assert.Equal(t, 1.0, result.Aggregates.IntegrityPassRatio)
	assert.Equal(t, []int64{1 << 20, 10 << 20, 100 << 20}, []int64{
		result.Pairs[0].Transfer.File.SizeBytes,
		result.Pairs[1].Transfer.File.SizeBytes,
		result.Pairs[2].Transfer.File.SizeBytes,
	})
	for _, pair := range result.Pairs {
		assert.True(t, pair.Transfer.Success)
		assert.True(t, pair.Verification.Match)
	}
}

func TestRateIsFiniteAndNonNegative(t *testing.T) {
	// 即使耗时低于可测量精度,速率也必须是有限非负数
	specs := makeSpecs(1024)
	orch := newTestOrchestrator(&fakeCopier{}, &fakeVerifier{}, Options{})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	rate := result.Pairs[0].Transfer.RateBytesPerSec
	assert.GreaterOrEqual(t, rate, 0.0)
	assert.False(t, math.IsInf(rate, 0))
	assert.False(t, math.IsNaN(rate))
}

func TestFirstFileAuthFailureAbortsRun(t *testing.T) {
	specs := makeSpecs(1024, 2048, 4096)
	copier := &fakeCopier{
		fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			return 0, errors.New("ssh: handshake failed: ssh: unable to authenticate")
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{FirstFileRetries: 1})

	result, err := orch.Run(context.Background(), specs)
	assert.Nil(t, result)

	var unreachable *UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, models.ErrorKindAuth, unreachable.Kind)
	// 初始尝试 + 1 次重试,后续文件不再被处理
	assert.Equal(t, 2, unreachable.Attempts)
	assert.Equal(t, 2, copier.callCount())
}

func TestFirstFileRetrySucceeds(t *testing.T) {
	specs := makeSpecs(1024, 2048)
	attempt := 0
	copier := &fakeCopier{
		fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			if file.Name == "f1.dat" {
				attempt++
				if attempt == 1 {
					return 0, errors.New("dial tcp: connection refused")
				}
			}
			return file.SizeBytes, nil
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{FirstFileRetries: 1})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, result.Pairs, 2)
	assert.True(t, result.Pairs[0].Transfer.Success)
	assert.Equal(t, 1.0, result.Aggregates.SuccessRatio)
}

func TestMidRunFailureRecordedAndRunContinues(t *testing.T) {
	// 第2个文件连接失败,运行继续,失败被记录且校验跳过
	specs := makeSpecs(1024, 2048, 4096)
	copier := &fakeCopier{
		fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			if file.Name == "f2.dat" {
				return 0, errors.New("dial tcp: connection refused")
			}
			return file.SizeBytes, nil
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, result.Pairs, 3)

	failed := result.Pairs[1]
	assert.False(t, failed.Transfer.Success)
	assert.Equal(t, models.ErrorKindConnect, failed.Transfer.ErrorKind)
	// skipped 必然对应传输失败
	assert.Equal(t, models.ErrorKindSkipped, failed.Verification.ErrorKind)
	assert.False(t, failed.Verification.Match)

	assert.True(t, result.Pairs[0].Transfer.Success)
	assert.True(t, result.Pairs[2].Transfer.Success)
	assert.InDelta(t, 2.0/3.0, result.Aggregates.SuccessRatio, 1e-9)
	assert.Equal(t, 1.0, result.Aggregates.IntegrityPassRatio)
}

func TestDigestMismatchOnlyAffectsThatFile(t *testing.T) {
	specs := makeSpecs(1024, 2048, 4096)
	verifier := &fakeVerifier{
		fn: func(file models.FileSpec) (string, string, error) {
			if file.Name == "f2.dat" {
				return "aaaa", "bbbb", nil
			}
			return "cccc", "cccc", nil
		},
	}
	orch := newTestOrchestrator(&fakeCopier{}, verifier, Options{})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)

	assert.True(t, result.Pairs[0].Verification.Match)
	assert.False(t, result.Pairs[1].Verification.Match)
	assert.True(t, result.Pairs[2].Verification.Match)

	// 传输都成功,但完整性通过率排除摘要不一致的文件
	assert.Equal(t, 1.0, result.Aggregates.SuccessRatio)
	assert.InDelta(t, 2.0/3.0, result.Aggregates.IntegrityPassRatio, 1e-9)
}

func TestPartialTransferClassified(t *testing.T) {
	// 写入字节数不足,即使发生在首个文件也不算连通性故障
	specs := makeSpecs(1024)
	copier := &fakeCopier{
		fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			return file.SizeBytes / 2, nil
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{FirstFileRetries: 3})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, models.ErrorKindPartial, result.Pairs[0].Transfer.ErrorKind)
	assert.False(t, result.Pairs[0].Transfer.Success)
	assert.Equal(t, 1, copier.callCount())
}

func TestTimeoutClassifiedOnLaterFile(t *testing.T) {
	specs := makeSpecs(1024, 2048)
	copier := &fakeCopier{
		fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			if file.Name == "f2.dat" {
				<-ctx.Done()
				return 0, ctx.Err()
			}
			return file.SizeBytes, nil
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{Timeout: 50 * time.Millisecond})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, result.Pairs, 2)
	assert.Equal(t, models.ErrorKindTimeout, result.Pairs[1].Transfer.ErrorKind)
}

func TestCancellationReturnsPartialResult(t *testing.T) {
	specs := makeSpecs(1024, 2048, 4096)
	ctx, cancel := context.WithCancel(context.Background())
	copier := &fakeCopier{
		fn: func(_ context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			if file.Name == "f1.dat" {
				// 第一个文件完成后触发外部取消
				defer cancel()
			}
			return file.SizeBytes, nil
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{})

	result, err := orch.Run(ctx, specs)
	require.ErrorIs(t, err, context.Canceled)
	// 已完成的测量不能丢
	require.NotNil(t, result)
	require.Len(t, result.Pairs, 1)
	assert.True(t, result.Pairs[0].Transfer.Success)
	assert.Equal(t, 1.0, result.Aggregates.SuccessRatio)
}

func TestCancelDuringFirstFileNotTreatedAsUnreachable(t *testing.T) {
	// 首个文件传输途中按下 Ctrl-C: 不消耗重试预算,不报目标不可达,
	// 被打断的文件记录为 canceled 后返回部分结果
	specs := makeSpecs(1024, 2048, 4096)
	ctx, cancel := context.WithCancel(context.Background())
	copier := &fakeCopier{
		fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
			cancel()
			<-ctx.Done()
			return 512, ctx.Err()
		},
	}
	orch := newTestOrchestrator(copier, &fakeVerifier{}, Options{FirstFileRetries: 3})

	result, err := orch.Run(ctx, specs)
	require.ErrorIs(t, err, context.Canceled)
	var unreachable *UnreachableError
	assert.False(t, errors.As(err, &unreachable))
	assert.Equal(t, 1, copier.callCount())

	require.NotNil(t, result)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, models.ErrorKindCanceled, result.Pairs[0].Transfer.ErrorKind)
	assert.Equal(t, models.ErrorKindSkipped, result.Pairs[0].Verification.ErrorKind)
}

func TestErrorClassificationIsDeterministic(t *testing.T) {
	// 同样的故障重复运行,每个文件的错误分类必须一致
	specs := makeSpecs(1024, 2048)
	newCopier := func() *fakeCopier {
		return &fakeCopier{
			fn: func(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
				if file.Name == "f2.dat" {
					return 0, errors.New("dial tcp: connection refused")
				}
				return file.SizeBytes, nil
			},
		}
	}

	first, err := newTestOrchestrator(newCopier(), &fakeVerifier{}, Options{}).Run(context.Background(), specs)
	require.NoError(t, err)
	second, err := newTestOrchestrator(newCopier(), &fakeVerifier{}, Options{}).Run(context.Background(), specs)
	require.NoError(t, err)

	for i := range first.Pairs {
		assert.Equal(t, first.Pairs[i].Transfer.ErrorKind, second.Pairs[i].Transfer.ErrorKind)
		assert.Equal(t, first.Pairs[i].Verification.ErrorKind, second.Pairs[i].Verification.ErrorKind)
	}
}

func TestVerifierErrorRecordedAsRemoteExec(t *testing.T) {
	specs := makeSpecs(1024)
	verifier := &fakeVerifier{
		fn: func(file models.FileSpec) (string, string, error) {
			return "local", "", errors.New("远端未找到 md5 工具")
		},
	}
	orch := newTestOrchestrator(&fakeCopier{}, verifier, Options{})

	result, err := orch.Run(context.Background(), specs)
	require.NoError(t, err)
	v := result.Pairs[0].Verification
	assert.Equal(t, models.ErrorKindRemoteExec, v.ErrorKind)
	assert.False(t, v.Match)
	// 校验失败不影响传输成功率,但计入完整性通过率的分母
	assert.Equal(t, 1.0, result.Aggregates.SuccessRatio)
	assert.Equal(t, 0.0, result.Aggregates.IntegrityPassRatio)
}
