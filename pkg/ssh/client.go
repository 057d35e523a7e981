package ssh

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Client 封装一条已建立的 ssh 连接
type Client struct {
	sshClient *ssh.Client
	endpoint  Endpoint
	identity  Identity
}

func newClient(raw *ssh.Client, ep Endpoint, id Identity) *Client {
	return &Client{
		sshClient: raw,
		endpoint:  ep,
		identity:  id,
	}
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.sshClient.Close()
}

// SSHClient 暴露底层的 ssh.Client (供高级操作使用,如 SFTP)
func (c *Client) SSHClient() *ssh.Client {
	return c.sshClient
}

// Endpoint 返回当前连接对应的端点
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Run 在新会话中执行命令并返回合并后的输出
// ctx 取消时会向远端发送 SIGKILL
func (c *Client) Run(ctx context.Context, cmd string) (string, error) {
	session, err := c.sshClient.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()

	return startWithTimeout(ctx, session, cmd)
}

func startWithTimeout(ctx context.Context, session *ssh.Session, command string) (string, error) {
	// 捕获 Stdout 和 Stderr 到同一个缓冲区
	var b bytes.Buffer
	session.Stdout = &b
	session.Stderr = &b

	if err := session.Start(command); err != nil {
		return "", fmt.Errorf("启动远端命令失败: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return b.String(), fmt.Errorf("远端命令执行失败: %w, output: %s", err, b.String())
		}
		return b.String(), nil
	case <-ctx.Done():
		// 上下文取消,尝试终止命令
		if killErr := session.Signal(ssh.SIGKILL); killErr != nil {
			return b.String(), fmt.Errorf("取消后终止远端命令失败: %w", killErr)
		}
		return b.String(), ctx.Err()
	}
}
