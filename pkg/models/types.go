package models

import (
	"time"

	"github.com/google/uuid"
)

// ErrorKind 对一次操作失败的分类
// 空字符串表示没有错误
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindAuth       ErrorKind = "auth"        // 认证失败
	ErrorKindConnect    ErrorKind = "connect"     // 无法建立连接
	ErrorKindTimeout    ErrorKind = "timeout"     // 操作超时
	ErrorKindCanceled   ErrorKind = "canceled"    // 外部取消打断了传输
	ErrorKindPartial    ErrorKind = "partial"     // 实际写入字节数小于文件大小
	ErrorKindRemoteExec ErrorKind = "remote_exec" // 远端摘要命令执行失败
	ErrorKindSkipped    ErrorKind = "skipped"     // 传输失败导致校验被跳过
	ErrorKindGeneration ErrorKind = "generation"  // 测试文件生成失败
)

// FileState 单个文件在基准测试中的状态机
// Pending → Transferring → {TransferFailed | Transferred}
// Transferred → {VerificationSkipped | Verifying → {Verified | VerificationFailed}}
type FileState int

const (
	StatePending FileState = iota
	StateTransferring
	StateTransferFailed
	StateTransferred
	StateVerifying
	StateVerificationSkipped
	StateVerified
	StateVerificationFailed
)

var stateNames = map[FileState]string{
	StatePending:             "pending",
	StateTransferring:        "transferring",
	StateTransferFailed:      "transfer_failed",
	StateTransferred:         "transferred",
	StateVerifying:           "verifying",
	StateVerificationSkipped: "verification_skipped",
	StateVerified:            "verified",
	StateVerificationFailed:  "verification_failed",
}

func (s FileState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal 判断状态是否为终态
func (s FileState) Terminal() bool {
	switch s {
	case StateTransferFailed, StateVerificationSkipped, StateVerified, StateVerificationFailed:
		return true
	}
	return false
}

// FileSpec 描述一个待测试的本地文件
// 由生成器创建后不再修改,清理由外部负责
type FileSpec struct {
	Name      string `yaml:"name"`       // 唯一文件名,如 100MB_1.dat
	SizeBytes int64  `yaml:"size_bytes"` // 目标大小,必须为正
	LocalPath string `yaml:"local_path"` // 本地绝对路径
}

// TransferOutcome 单个文件的传输结果,创建后不可变
type TransferOutcome struct {
	File             FileSpec  `yaml:"file"`
	StartedAt        time.Time `yaml:"started_at"`
	FinishedAt       time.Time `yaml:"finished_at"`
	BytesTransferred int64     `yaml:"bytes_transferred"`
	Success          bool      `yaml:"success"`
	ErrorKind        ErrorKind `yaml:"error_kind,omitempty"`
	Error            string    `yaml:"error,omitempty"`
	DurationSeconds  float64   `yaml:"duration_seconds"`
	RateBytesPerSec  float64   `yaml:"rate_bytes_per_sec"`
}

// VerificationOutcome 单个文件的完整性校验结果,创建后不可变
// 仅在传输成功后才会真正执行校验,否则记录为 skipped
type VerificationOutcome struct {
	File         FileSpec  `yaml:"file"`
	LocalDigest  string    `yaml:"local_digest,omitempty"`
	RemoteDigest string    `yaml:"remote_digest,omitempty"`
	Match        bool      `yaml:"match"`
	ErrorKind    ErrorKind `yaml:"error_kind,omitempty"`
	Error        string    `yaml:"error,omitempty"`
}

// OutcomePair 每个文件对应的一组结果
type OutcomePair struct {
	Transfer     TransferOutcome     `yaml:"transfer"`
	Verification VerificationOutcome `yaml:"verification"`
}

// Aggregates 对结果序列的汇总统计
// 必须由 ComputeAggregates 重新计算得到,不允许单独修改
type Aggregates struct {
	TotalFiles          int     `yaml:"total_files"`
	TotalBytes          int64   `yaml:"total_bytes"`
	TotalSeconds        float64 `yaml:"total_seconds"`
	MeanRateBytesPerSec float64 `yaml:"mean_rate_bytes_per_sec"`
	SuccessRatio        float64 `yaml:"success_ratio"`
	IntegrityPassRatio  float64 `yaml:"integrity_pass_ratio"`
}

// RunResult 一次完整基准测试的结果
// Pairs 的顺序与处理顺序一致(按文件大小升序),每个 FileSpec 恰好一项
type RunResult struct {
	ID         uuid.UUID     `yaml:"id"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
	Pairs      []OutcomePair `yaml:"pairs"`
	Aggregates Aggregates    `yaml:"aggregates"`
}
