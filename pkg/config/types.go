package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRemoteDir        = "/file_transport"
	DefaultPort             = 22
	DefaultCountPerSize     = 10
	DefaultTimeout          = Duration(30 * time.Minute)
	DefaultFirstFileRetries = 1
	DefaultThreadsPerFile   = 1
)

// Duration 支持 "30m" / "90s" 形式的时长配置
// 纯数字按秒解释
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs int64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("无效的时长 '%s': %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultSizes 默认的测试文件规格,与文件名前缀一一对应
var DefaultSizes = []string{"1KB", "100MB", "1GB", "10GB"}

// Config 对应 yaml 配置文件的顶层结构
// 传输用的地址和 ssh 登录(校验)用的地址可以不同
type Config struct {
	// 传输目标
	TargetIP string `yaml:"target_ip"`
	Port     uint16 `yaml:"port"`

	// ssh 登录地址,用于远端摘要计算,缺省回退到传输地址
	SSHIP   string `yaml:"ssh_ip,omitempty"`
	SSHPort uint16 `yaml:"ssh_port,omitempty"`

	// 认证信息
	Username string `yaml:"username"`
	Password string `yaml:"password,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`

	// 远端目录,相对路径相对于远端家目录
	RemoteDir string `yaml:"remote_dir,omitempty"`

	// 基准测试参数
	Sizes            []string `yaml:"sizes,omitempty"`              // 文件规格,如 ["1KB","100MB","1GB","10GB"]
	CountPerSize     int      `yaml:"count_per_size,omitempty"`     // 每种规格的文件数量
	ScratchDir       string   `yaml:"scratch_dir,omitempty"`        // 本地临时目录,默认当前目录
	Sparse           bool     `yaml:"sparse,omitempty"`             // 生成稀疏文件(全零)而不是伪随机内容
	Timeout          Duration `yaml:"timeout,omitempty"`            // 单文件传输/校验超时
	FirstFileRetries *int     `yaml:"first_file_retries,omitempty"` // 首个文件的连接重试次数,显式 0 表示失败立即中止
	ThreadsPerFile   int      `yaml:"threads_per_file,omitempty"`   // 单文件并发分块数,>1 会影响测量精度
}
