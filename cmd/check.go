package cmd

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"example.com/FtBench/pkg/config"
	ping "github.com/prometheus-community/pro-bing"
	"github.com/spf13/cobra"
)

// checkCmd 在正式跑基准测试前做连通性预检
// 大文件传输动辄数小时,先确认链路可用可以省去无谓的等待
var checkCmd = &cobra.Command{
	Use:   "check -c config.yaml",
	Short: "检查到目标主机的连通性",
	Long: `检查到目标主机的连通性:
1. 对传输目标做ICMP Ping测试网络连通性(需要root权限)
2. 尝试建立到传输端口和SSH登录端口的TCP连接
该命令不会登录目标主机,也不会传输任何数据。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		icmpPing(cfg.TargetIP)
		checkTCPPort(cfg.TargetIP, cfg.Port)
		if cfg.SSHAddr() != cfg.TargetAddr() {
			checkTCPPort(cfg.SSHIP, cfg.SSHPort)
		}
		return nil
	},
}

func icmpPing(ip string) {
	fmt.Printf("正在通过ICMP Ping %s...\n", ip)
	pinger, err := ping.NewPinger(ip)
	if err != nil {
		fmt.Printf("创建pinger失败: %v\n", err)
		return
	}
	// Linux/macOS 上执行ICMP raw socket需要root权限
	pinger.SetPrivileged(true)
	pinger.Count = 4
	pinger.Interval = time.Second
	pinger.Timeout = 4 * time.Second
	if err := pinger.Run(); err != nil {
		fmt.Printf("Ping失败: %v\n", err)
		return
	}
	stats := pinger.Statistics()
	fmt.Printf("收到 %d/%d 个回复, 平均延迟 %v\n",
		stats.PacketsRecv, stats.PacketsSent, stats.AvgRtt)
}

func checkTCPPort(ip string, port uint16) {
	address := net.JoinHostPort(ip, strconv.Itoa(int(port)))
	fmt.Printf("正在测试到 %s 的TCP连接...\n", address)

	conn, err := net.DialTimeout("tcp", address, 5*time.Second)
	if err != nil {
		fmt.Printf("主机 %s 的端口 %d 已关闭或被过滤: %v\n", ip, port, err)
		return
	}
	conn.Close()
	fmt.Printf("主机 %s 的端口 %d 是开放的!\n", ip, port)
}

func init() {
	checkCmd.Flags().StringP("config", "c", "config.yaml", "配置文件路径")
	rootCmd.AddCommand(checkCmd)
}
