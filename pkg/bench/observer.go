package bench

import "example.com/FtBench/pkg/models"

// Observer 接收基准测试过程中的进度事件
// 事件只用于展示,任何实现都不得影响测量结果
// FileProgress 可能被高频调用,实现必须是轻量且并发安全的
type Observer interface {
	// FileStarted 第 index 个文件(从 1 开始)开始传输
	FileStarted(file models.FileSpec, index, total int)
	// FileProgress 当前文件累计传输的字节数
	FileProgress(file models.FileSpec, transferred int64)
	// FileFinished 当前文件的传输结果已经确定
	FileFinished(outcome models.TransferOutcome)
	// FileVerified 当前文件的校验结果已经确定(包括 skipped)
	FileVerified(outcome models.VerificationOutcome)
}

// noopObserver 缺省实现,不做任何事
type noopObserver struct{}

func (noopObserver) FileStarted(models.FileSpec, int, int)   {}
func (noopObserver) FileProgress(models.FileSpec, int64)     {}
func (noopObserver) FileFinished(models.TransferOutcome)     {}
func (noopObserver) FileVerified(models.VerificationOutcome) {}
