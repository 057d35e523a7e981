package report

import (
	"fmt"
	"sync"

	"example.com/FtBench/pkg/models"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
)

// BarObserver 用进度条实现 bench.Observer
// 只做展示,事件由编排器限流,这里不做额外节流
// 分块并发上传时进度事件来自多个协程,bar 和 last 必须加锁
type BarObserver struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	last int64
}

func NewBarObserver() *BarObserver {
	return &BarObserver{}
}

func (b *BarObserver) FileStarted(file models.FileSpec, index, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = 0
	b.bar = progressbar.DefaultBytes(
		file.SizeBytes,
		fmt.Sprintf("[%d/%d] 上传 %s", index, total, file.Name),
	)
}

func (b *BarObserver) FileProgress(file models.FileSpec, transferred int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// 事件携带的是累计值,进度条吃增量;乱序到达的旧值直接丢弃
	if b.bar == nil || transferred <= b.last {
		return
	}
	b.bar.Add64(transferred - b.last)
	b.last = transferred
}

func (b *BarObserver) FileFinished(outcome models.TransferOutcome) {
	b.mu.Lock()
	if b.bar != nil {
		if outcome.Success {
			b.bar.Finish()
		}
		b.bar.Close()
		b.bar = nil
		fmt.Println()
	}
	b.mu.Unlock()
	if outcome.Success {
		passColor.Printf("[%s] 传输完成: %s, 用时 %.2fs, 速率 %s\n",
			outcome.File.Name,
			models.FormatBytes(outcome.BytesTransferred),
			outcome.DurationSeconds,
			models.FormatRate(outcome.RateBytesPerSec))
	} else {
		failColor.Printf("[%s] 传输失败(%s): %s\n",
			outcome.File.Name, string(outcome.ErrorKind), outcome.Error)
	}
}

func (b *BarObserver) FileVerified(outcome models.VerificationOutcome) {
	switch {
	case outcome.ErrorKind == models.ErrorKindSkipped:
		skipColor.Printf("[%s] 跳过校验\n", outcome.File.Name)
	case outcome.Match:
		passColor.Printf("[%s] 校验通过\n", outcome.File.Name)
	case outcome.ErrorKind == models.ErrorKindRemoteExec:
		skipColor.Printf("[%s] 远端摘要获取失败: %s\n", outcome.File.Name, outcome.Error)
	default:
		failColor.Printf("[%s] 校验失败! 本地 %s, 远端 %s\n",
			outcome.File.Name, outcome.LocalDigest, outcome.RemoteDigest)
	}
}
