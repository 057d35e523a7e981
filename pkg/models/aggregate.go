package models

import "fmt"

// ComputeAggregates 从结果序列计算汇总统计
// 纯函数,不修改输入;没有成功传输时平均速率为 0 而不是 NaN
func ComputeAggregates(pairs []OutcomePair) Aggregates {
	agg := Aggregates{TotalFiles: len(pairs)}
	if len(pairs) == 0 {
		return agg
	}

	successes := 0
	rateSum := 0.0
	attempted := 0
	matched := 0
	for _, p := range pairs {
		agg.TotalBytes += p.Transfer.BytesTransferred
		agg.TotalSeconds += p.Transfer.DurationSeconds
		if p.Transfer.Success {
			successes++
			rateSum += p.Transfer.RateBytesPerSec
		}
		// skipped 不计入校验尝试
		if p.Verification.ErrorKind != ErrorKindSkipped && p.Transfer.Success {
			attempted++
			if p.Verification.Match {
				matched++
			}
		}
	}

	if successes > 0 {
		agg.MeanRateBytesPerSec = rateSum / float64(successes)
	}
	agg.SuccessRatio = float64(successes) / float64(len(pairs))
	if attempted > 0 {
		agg.IntegrityPassRatio = float64(matched) / float64(attempted)
	}
	return agg
}

// FormatBytes 人类可读的字节数表示
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatRate 人类可读的速率表示
func FormatRate(bytesPerSec float64) string {
	return fmt.Sprintf("%.2f MiB/s", bytesPerSec/(1024*1024))
}
