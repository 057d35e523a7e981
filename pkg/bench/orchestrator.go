package bench

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"example.com/FtBench/pkg/logger"
	"example.com/FtBench/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// rateEpsilon 防止极小耗时导致除零
const rateEpsilon = 1e-9

// DefaultProgressInterval 进度事件的最小间隔
const DefaultProgressInterval = 200 * time.Millisecond

// Copier 远程复制能力的抽象
// 返回实际写入远端的字节数,progress 回调必须并发安全
type Copier interface {
	Copy(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error)
}

// Verifier 完整性校验能力的抽象
// 返回本地与远端的内容摘要,由编排器比较是否一致
type Verifier interface {
	Verify(ctx context.Context, file models.FileSpec) (localDigest, remoteDigest string, err error)
}

// Options 编排器的运行参数
type Options struct {
	// Timeout 单次传输/校验调用的超时,超时归类为对应的错误分类
	Timeout time.Duration
	// FirstFileRetries 首个文件连通性故障的额外重试次数
	// 重试耗尽后整个运行以 UnreachableError 中止
	FirstFileRetries int
	// ProgressInterval 进度事件的最小间隔,0 使用默认值
	ProgressInterval time.Duration
}

// Orchestrator 基准测试编排器
// 按文件大小升序逐个传输并校验,单线程驱动以保证吞吐测量不受带宽竞争干扰
type Orchestrator struct {
	copier   Copier
	verifier Verifier
	opts     Options
	observer Observer

	// 当前文件的累计传输字节数,单写多读
	transferred atomic.Int64
}

func New(copier Copier, verifier Verifier, opts Options, observer Observer) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}
	if opts.FirstFileRetries < 0 {
		opts.FirstFileRetries = 0
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Orchestrator{
		copier:   copier,
		verifier: verifier,
		opts:     opts,
		observer: observer,
	}
}

// Run 执行完整的基准测试
// 单个文件的失败只会被记录,运行继续;只有两类情况返回错误:
//  1. 首个文件在重试预算内始终无法连通 (UnreachableError),此时不产生结果
//  2. 外部取消,此时返回已完成部分的结果和 ctx 的错误,测量数据不丢失
func (o *Orchestrator) Run(ctx context.Context, specs []models.FileSpec) (*models.RunResult, error) {
	if len(specs) == 0 {
		return nil, ErrNoFiles
	}

	// 按大小升序排列,小文件先行,连通性问题尽早暴露
	// 不修改调用方的切片;同大小保持原有相对顺序
	ordered := make([]models.FileSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SizeBytes < ordered[j].SizeBytes
	})

	result := &models.RunResult{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Pairs:     make([]models.OutcomePair, 0, len(ordered)),
	}

	for i, spec := range ordered {
		// 取消只发生在文件之间,已有的测量结果仍然返回
		if err := ctx.Err(); err != nil {
			return o.finalize(result), err
		}

		transfer, fatal := o.transferFile(ctx, spec, i, len(ordered))
		if fatal != nil {
			// 首文件连通性故障,运行中止,不产生结果
			return nil, fatal
		}
		o.observer.FileFinished(transfer)

		verification := o.verifyFile(ctx, spec, transfer)
		o.observer.FileVerified(verification)

		result.Pairs = append(result.Pairs, models.OutcomePair{
			Transfer:     transfer,
			Verification: verification,
		})
	}

	return o.finalize(result), nil
}

func (o *Orchestrator) finalize(result *models.RunResult) *models.RunResult {
	result.FinishedAt = time.Now()
	result.Aggregates = models.ComputeAggregates(result.Pairs)
	return result
}

// transferFile 传输一个文件并生成不可变的结果记录
// 仅首个文件的连通性故障会按重试预算重试,重试耗尽返回致命错误
func (o *Orchestrator) transferFile(parent context.Context, spec models.FileSpec, index, total int) (models.TransferOutcome, error) {
	attempts := 1
	if index == 0 {
		attempts += o.opts.FirstFileRetries
	}

	var outcome models.TransferOutcome
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome = o.attemptTransfer(parent, spec, index, total)
		if outcome.Success || !connectivityKind(outcome.ErrorKind) {
			return outcome, nil
		}
		if index > 0 {
			// 非首文件不重试,记录后继续下一个文件
			return outcome, nil
		}
		logger.Logger.Warn("首个文件传输失败",
			"file", spec.Name, "kind", string(outcome.ErrorKind),
			"attempt", attempt, "max", attempts, "error", outcome.Error)
	}

	return outcome, &UnreachableError{
		Attempts: attempts,
		Kind:     outcome.ErrorKind,
		Err:      errors.New(outcome.Error),
	}
}

func (o *Orchestrator) attemptTransfer(parent context.Context, spec models.FileSpec, index, total int) models.TransferOutcome {
	o.observer.FileStarted(spec, index+1, total)
	o.transferred.Store(0)

	// 进度事件限流,回调读原子计数器,不阻塞传输协程
	limiter := rate.NewLimiter(rate.Every(o.opts.ProgressInterval), 1)
	progress := func(n int) {
		current := o.transferred.Add(int64(n))
		if limiter.Allow() {
			o.observer.FileProgress(spec, current)
		}
	}

	ctx, cancel := context.WithTimeout(parent, o.opts.Timeout)
	defer cancel()

	started := time.Now()
	written, err := o.copier.Copy(ctx, spec, progress)
	finished := time.Now()

	duration := finished.Sub(started).Seconds()
	outcome := models.TransferOutcome{
		File:             spec,
		StartedAt:        started,
		FinishedAt:       finished,
		BytesTransferred: written,
		DurationSeconds:  duration,
		RateBytesPerSec:  float64(written) / max(duration, rateEpsilon),
	}

	switch {
	case err != nil:
		outcome.ErrorKind = classifyTransferError(err)
		outcome.Error = err.Error()
	case written < spec.SizeBytes:
		// 没有报错但写入不完整
		outcome.ErrorKind = models.ErrorKindPartial
		outcome.Error = "实际写入字节数小于文件大小"
	default:
		outcome.Success = true
	}
	return outcome
}

// verifyFile 对传输成功的文件做完整性校验,失败的文件记录为 skipped
func (o *Orchestrator) verifyFile(parent context.Context, spec models.FileSpec, transfer models.TransferOutcome) models.VerificationOutcome {
	if !transfer.Success {
		return models.VerificationOutcome{
			File:      spec,
			ErrorKind: models.ErrorKindSkipped,
		}
	}

	ctx, cancel := context.WithTimeout(parent, o.opts.Timeout)
	defer cancel()

	local, remote, err := o.verifier.Verify(ctx, spec)
	outcome := models.VerificationOutcome{
		File:         spec,
		LocalDigest:  local,
		RemoteDigest: remote,
	}
	if err != nil {
		outcome.ErrorKind = classifyVerifyError(err)
		outcome.Error = err.Error()
		return outcome
	}
	// 摘要按字符串逐字节比较
	outcome.Match = local != "" && local == remote
	return outcome
}
