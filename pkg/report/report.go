package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"example.com/FtBench/pkg/config"
	"example.com/FtBench/pkg/models"
	"gopkg.in/yaml.v3"
)

// Print 在控制台输出完整的测试报告
// 配置信息、逐文件结果、汇总统计,对应 PDF 报告的各章节
func Print(w io.Writer, cfg *config.Config, result *models.RunResult) {
	fmt.Fprintf(w, "\n===== 数据传输性能评估报告 =====\n")
	fmt.Fprintf(w, "运行ID: %s\n\n", result.ID)

	fmt.Fprintln(w, "1. 测试配置信息")
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  传输目标\t%s\n", cfg.TargetAddr())
	fmt.Fprintf(tw, "  SSH登录地址\t%s\n", cfg.SSHAddr())
	fmt.Fprintf(tw, "  用户名\t%s\n", cfg.Username)
	if cfg.KeyPath != "" {
		fmt.Fprintf(tw, "  密钥路径\t%s\n", cfg.KeyPath)
	}
	fmt.Fprintf(tw, "  远端目录\t%s\n", cfg.RemoteDir)
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "2. 逐文件结果")
	tw = tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  文件\t大小\t用时(s)\t速率\t传输\t校验\n")
	for _, pair := range result.Pairs {
		fmt.Fprintf(tw, "  %s\t%s\t%.2f\t%s\t%s\t%s\n",
			pair.Transfer.File.Name,
			models.FormatBytes(pair.Transfer.File.SizeBytes),
			pair.Transfer.DurationSeconds,
			models.FormatRate(pair.Transfer.RateBytesPerSec),
			transferStatus(pair.Transfer),
			verifyStatus(pair.Verification),
		)
	}
	tw.Flush()
	fmt.Fprintln(w)

	agg := result.Aggregates
	fmt.Fprintln(w, "3. 汇总统计")
	tw = tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  文件总数\t%d\n", agg.TotalFiles)
	fmt.Fprintf(tw, "  传输总量\t%s\n", models.FormatBytes(agg.TotalBytes))
	fmt.Fprintf(tw, "  传输总用时\t%.2f s\n", agg.TotalSeconds)
	fmt.Fprintf(tw, "  平均传输速率\t%s\n", models.FormatRate(agg.MeanRateBytesPerSec))
	fmt.Fprintf(tw, "  传输成功率\t%.1f%%\n", agg.SuccessRatio*100)
	fmt.Fprintf(tw, "  校验通过率\t%.1f%%\n", agg.IntegrityPassRatio*100)
	tw.Flush()
	fmt.Fprintln(w)
}

func transferStatus(t models.TransferOutcome) string {
	if t.Success {
		return "成功"
	}
	return fmt.Sprintf("失败(%s)", string(t.ErrorKind))
}

func verifyStatus(v models.VerificationOutcome) string {
	switch {
	case v.ErrorKind == models.ErrorKindSkipped:
		return "跳过"
	case v.Match:
		return "通过"
	default:
		return "未通过"
	}
}

// WriteYAML 把完整的 RunResult 导出为 yaml 文件
// 下游的绘图/PDF 工具以此为唯一输入
func WriteYAML(path string, result *models.RunResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入结果文件失败: %w", err)
	}
	return nil
}
