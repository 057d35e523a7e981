package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load 读取并解析配置文件,随后应用默认值并校验
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 应用默认值并检查必填项
// 只在启动时调用一次,之后 Config 视为只读
func (c *Config) Validate() error {
	if c.TargetIP == "" {
		return fmt.Errorf("缺少必填项 target_ip")
	}
	if c.Username == "" {
		return fmt.Errorf("缺少必填项 username")
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	// ssh 登录地址缺省回退到传输地址
	if c.SSHIP == "" {
		c.SSHIP = c.TargetIP
	}
	if c.SSHPort == 0 {
		c.SSHPort = c.Port
	}
	if c.RemoteDir == "" {
		c.RemoteDir = DefaultRemoteDir
	}
	if len(c.Sizes) == 0 {
		c.Sizes = append([]string(nil), DefaultSizes...)
	}
	if c.CountPerSize <= 0 {
		c.CountPerSize = DefaultCountPerSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	// 指针区分"未配置"和显式的 0 (失败立即中止)
	if c.FirstFileRetries == nil {
		retries := DefaultFirstFileRetries
		c.FirstFileRetries = &retries
	} else if *c.FirstFileRetries < 0 {
		*c.FirstFileRetries = 0
	}
	if c.ThreadsPerFile <= 0 {
		c.ThreadsPerFile = DefaultThreadsPerFile
	}
	return nil
}

// TargetAddr 返回传输目标地址 host:port
func (c *Config) TargetAddr() string {
	return fmt.Sprintf("%s:%d", c.TargetIP, c.Port)
}

// SSHAddr 返回校验用的 ssh 登录地址 host:port
func (c *Config) SSHAddr() string {
	return fmt.Sprintf("%s:%d", c.SSHIP, c.SSHPort)
}
