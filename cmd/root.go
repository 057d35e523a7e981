package cmd

import (
	"os"

	"example.com/FtBench/cmd/version"
	"example.com/FtBench/pkg/logger"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ftbench [command] [flags]",
	Short: "ftbench 是一个基于SSH的文件传输吞吐量基准测试工具",
	Long: `ftbench 在两台主机(如HPC集群节点)之间测试文件传输吞吐量和完整性。
它会生成指定大小的测试文件,通过SFTP逐个上传到目标主机,
统计每个文件和整体的传输速率,并通过远端md5摘要比对校验数据完整性,
最终输出结构化的测试报告。`,
	Run: func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			version.PrintFullVersion()
			os.Exit(0)
		}
		cmd.Help()
		os.Exit(0)
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debugFlag, _ := cmd.Flags().GetBool("debug")
		if debugFlag {
			logger.SetLogLevel("debug")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "显示版本信息")
	rootCmd.PersistentFlags().Bool("debug", false, "开启调试模式")
}
