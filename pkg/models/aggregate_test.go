package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pair(success bool, rate float64, verifyKind ErrorKind, match bool) OutcomePair {
	return OutcomePair{
		Transfer: TransferOutcome{
			Success:         success,
			RateBytesPerSec: rate,
		},
		Verification: VerificationOutcome{
			ErrorKind: verifyKind,
			Match:     match,
		},
	}
}

func TestComputeAggregatesEmpty(t *testing.T) {
	agg := ComputeAggregates(nil)
	assert.Equal(t, 0, agg.TotalFiles)
	assert.Equal(t, 0.0, agg.MeanRateBytesPerSec)
	assert.Equal(t, 0.0, agg.SuccessRatio)
	assert.Equal(t, 0.0, agg.IntegrityPassRatio)
}

func TestComputeAggregatesNoSuccesses(t *testing.T) {
	// 没有成功传输时平均速率必须是 0 而不是 NaN
	pairs := []OutcomePair{
		pair(false, 0, ErrorKindSkipped, false),
		pair(false, 0, ErrorKindSkipped, false),
	}
	agg := ComputeAggregates(pairs)
	assert.Equal(t, 0.0, agg.MeanRateBytesPerSec)
	assert.False(t, math.IsNaN(agg.SuccessRatio))
	assert.Equal(t, 0.0, agg.SuccessRatio)
	assert.Equal(t, 0.0, agg.IntegrityPassRatio)
}

func TestComputeAggregatesMixed(t *testing.T) {
	// 3个文件: 成功+通过 / 失败+跳过 / 成功+摘要不一致
	pairs := []OutcomePair{
		pair(true, 100, ErrorKindNone, true),
		pair(false, 0, ErrorKindSkipped, false),
		pair(true, 300, ErrorKindNone, false),
	}
	agg := ComputeAggregates(pairs)
	assert.Equal(t, 3, agg.TotalFiles)
	// 平均速率只统计成功传输
	assert.InDelta(t, 200.0, agg.MeanRateBytesPerSec, 1e-9)
	assert.InDelta(t, 2.0/3.0, agg.SuccessRatio, 1e-9)
	// 跳过的文件不计入校验分母
	assert.InDelta(t, 0.5, agg.IntegrityPassRatio, 1e-9)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.00 KiB", FormatBytes(1024))
	assert.Equal(t, "100.00 MiB", FormatBytes(100<<20))
	assert.Equal(t, "10.00 GiB", FormatBytes(10<<30))
}

func TestFileStateTerminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateTransferring.Terminal())
	assert.True(t, StateTransferFailed.Terminal())
	assert.True(t, StateVerificationSkipped.Terminal())
	assert.True(t, StateVerified.Terminal())
	assert.True(t, StateVerificationFailed.Terminal())
}
