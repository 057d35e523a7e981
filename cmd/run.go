package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"example.com/FtBench/pkg/bench"
	"example.com/FtBench/pkg/config"
	"example.com/FtBench/pkg/executor"
	"example.com/FtBench/pkg/generator"
	"example.com/FtBench/pkg/logger"
	"example.com/FtBench/pkg/report"
	"example.com/FtBench/pkg/sftp"
	"example.com/FtBench/pkg/ssh"
	"example.com/FtBench/pkg/verify"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type RunOptions struct {
	configPath string
	sizes      []string
	count      int
	sparse     bool
	noProgress bool
	output     string

	cfg *config.Config
}

func NewRunOptions() *RunOptions {
	return &RunOptions{}
}

func NewCmdRun() *cobra.Command {
	o := NewRunOptions()
	cmd := &cobra.Command{
		Use:   "run -c config.yaml",
		Short: "执行一次完整的吞吐量基准测试",
		Long: `执行一次完整的吞吐量基准测试:
1. 在本地临时目录生成指定大小的测试文件(默认 1KB/100MB/1GB/10GB 各10个,
   共计约111GB,请确保本地磁盘至少有110GB可用空间)
2. 按文件大小升序逐个上传到目标主机并统计速率
3. 通过远端md5摘要比对校验每个文件的完整性
4. 输出测试报告,并可将完整结果导出为yaml文件
测试文件在运行结束后不会自动删除,请自行清理本地和远端目录。
单个文件传输失败只会被记录,测试继续;首个文件在重试后仍无法连通则中止。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return fmt.Errorf("参数错误: %w", err)
			}
			return o.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "config.yaml", "配置文件路径")
	cmd.Flags().StringSliceVar(&o.sizes, "sizes", nil, "测试文件规格,覆盖配置文件,如 1KB,100MB,1GB")
	cmd.Flags().IntVar(&o.count, "count", 0, "每种规格的文件数量,覆盖配置文件")
	cmd.Flags().BoolVar(&o.sparse, "sparse", false, "生成稀疏全零文件(更快,但内容全部相同)")
	cmd.Flags().BoolVar(&o.noProgress, "no-progress", false, "不显示进度条")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "把完整结果导出为yaml文件")
	return cmd
}

func (o *RunOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	// 命令行参数覆盖配置文件
	if len(o.sizes) > 0 {
		cfg.Sizes = o.sizes
	}
	if o.count > 0 {
		cfg.CountPerSize = o.count
	}
	if o.sparse {
		cfg.Sparse = true
	}
	o.cfg = cfg
	return nil
}

func (o *RunOptions) Validate() error {
	if o.cfg.Password == "" && o.cfg.KeyPath == "" {
		// 配置里既没有密码也没有密钥,从终端读取密码
		pwd, err := readPasswordFromTerminal(fmt.Sprintf("请输入 %s@%s 的密码: ", o.cfg.Username, o.cfg.TargetIP))
		if err != nil {
			return fmt.Errorf("读取密码失败: %w", err)
		}
		o.cfg.Password = pwd
	}
	return nil
}

func (o *RunOptions) Run(parent context.Context) error {
	cfg := o.cfg
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 生成测试文件
	gen := generator.New(cfg.ScratchDir, generator.WithSparse(cfg.Sparse))
	specs, err := gen.Plan(cfg.Sizes, cfg.CountPerSize)
	if err != nil {
		return err
	}
	fmt.Printf("正在生成 %d 个测试文件...\n", len(specs))
	if err := gen.Generate(ctx, specs); err != nil {
		return err
	}

	// 2. 组装传输和校验能力
	connector := ssh.NewConnector()
	defer connector.CloseAll()

	identity := ssh.Identity{
		User:     cfg.Username,
		Password: cfg.Password,
		KeyPath:  cfg.KeyPath,
	}
	uploader := sftp.NewUploader(
		connector,
		ssh.Endpoint{Host: cfg.TargetIP, Port: cfg.Port},
		identity,
		cfg.RemoteDir,
		sftp.WithThreadsPerFile(cfg.ThreadsPerFile),
	)
	defer uploader.Close()

	verifyExec := &lazySSHExecutor{
		connector: connector,
		endpoint:  ssh.Endpoint{Host: cfg.SSHIP, Port: cfg.SSHPort},
		identity:  identity,
	}
	verifier := verify.New(verifyExec, cfg.RemoteDir)

	var observer bench.Observer
	if !o.noProgress {
		observer = report.NewBarObserver()
	}

	// 3. 执行基准测试
	orch := bench.New(uploader, verifier, bench.Options{
		Timeout:          cfg.Timeout.Std(),
		FirstFileRetries: *cfg.FirstFileRetries,
	}, observer)

	result, runErr := orch.Run(ctx, specs)

	// 取消时仍然输出已完成部分的结果
	if result != nil {
		report.Print(os.Stdout, cfg, result)
		if o.output != "" {
			if err := report.WriteYAML(o.output, result); err != nil {
				return err
			}
			fmt.Printf("完整结果已导出: %s\n", o.output)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Fprintln(os.Stderr, "测试被取消,以上为已完成部分的结果")
		}
		return runErr
	}
	return nil
}

// lazySSHExecutor 惰性建立校验用的 ssh 连接
// 首次执行命令时才连接,并开启心跳防止大文件传输期间连接被闲置断开
type lazySSHExecutor struct {
	connector *ssh.Connector
	endpoint  ssh.Endpoint
	identity  ssh.Identity

	once   sync.Once
	client *ssh.Client
	err    error
}

func (e *lazySSHExecutor) Run(ctx context.Context, cmd string) (string, error) {
	e.once.Do(func() {
		e.client, e.err = e.connector.Connect(ctx, e.endpoint, e.identity)
		if e.err == nil {
			ssh.StartKeepAlive(e.client.SSHClient(), 30*time.Second, func(err error) {
				logger.Logger.Warn("校验连接心跳失败", "error", err)
			})
		}
	})
	if e.err != nil {
		return "", e.err
	}
	return executor.NewSSHExecutor(e.client).Run(ctx, cmd)
}

func readPasswordFromTerminal(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func init() {
	rootCmd.AddCommand(NewCmdRun())
}
