package sftp

import (
	"fmt"

	"example.com/FtBench/pkg/ssh" // 复用已建立的 ssh 连接
	"github.com/pkg/sftp"
)

// Option 定义配置函数的类型
type Option func(*Client)

func WithThreadsPerFile(t int) Option {
	return func(c *Client) {
		if t > 0 {
			c.config.ThreadsPerFile = t
		}
	}
}

func WithChunkSize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.config.ChunkSize = size
		}
	}
}

// Client 包装了 sftp.Client,并持有底层的 ssh 连接引用
type Client struct {
	sftpClient *sftp.Client
	sshClient  *ssh.Client
	config     TransferConfig
}

// NewClient 基于现有的 SSH 连接创建一个 SFTP 客户端
// sftp.NewClient 会在 ssh 连接上打开一个新的 Subsystem
func NewClient(sshCli *ssh.Client, opts ...Option) (*Client, error) {
	client, err := sftp.NewClient(sshCli.SSHClient())
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp subsystem: %w", err)
	}
	sftpCli := &Client{
		sftpClient: client,
		sshClient:  sshCli,
		config:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(sftpCli)
	}
	return sftpCli, nil
}

// SFTPClient 返回底层的 *sftp.Client 对象,
// 允许调用者执行 stat, mkdir 等高级操作
func (c *Client) SFTPClient() *sftp.Client {
	return c.sftpClient
}

// Close 关闭 SFTP 会话 (不会关闭底层的 SSH 连接)
func (c *Client) Close() error {
	return c.sftpClient.Close()
}

// MkdirAll 确保远程目录存在
func (c *Client) MkdirAll(remoteDir string) error {
	return c.sftpClient.MkdirAll(remoteDir)
}

// JoinPath 辅助函数: 处理远程路径拼接 (SFTP 协议强制使用 forward slash)
func (c *Client) JoinPath(elem ...string) string {
	return c.sftpClient.Join(elem...)
}
