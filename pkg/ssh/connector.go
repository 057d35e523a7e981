package ssh

import (
	"context"
	"fmt"
	"net"
	"time"

	"example.com/FtBench/pkg/utils/concurrent"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/singleflight"
)

const dialTimeout = 15 * time.Second

// Connector 负责创建并缓存 SSH 连接
// 基准测试中传输端点和校验端点各占用一条连接,按 user@host:port 缓存
type Connector struct {
	// 连接池: 缓存 user@host:port -> *ssh.Client
	clients *concurrent.Map[string, *ssh.Client]
	// singleflight 组,用来控制并发和去重
	sf singleflight.Group
	// 底层拨号器,测试时可替换
	dialer Dialer
}

// NewConnector 创建一个新的 Connector
func NewConnector() *Connector {
	return &Connector{
		clients: concurrent.NewMap[string, *ssh.Client](concurrent.HashString),
		dialer:  &net.Dialer{Timeout: dialTimeout},
	}
}

// Connect 建立到指定端点的 SSH 连接
// 即使多个协程同时对同一端点调用 Connect,握手也只会执行一次
func (c *Connector) Connect(ctx context.Context, ep Endpoint, id Identity) (*Client, error) {
	key := fmt.Sprintf("%s@%s", id.User, ep.Addr())
	if cached, ok := c.clients.Get(key); ok {
		// 对于短生命周期的 CLI 工具,假设缓存的连接是可用的
		return newClient(cached, ep, id), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// 双重检查: 防止在进入 Do 之前别的协程刚好把连接建立好了
		if cached, ok := c.clients.Get(key); ok {
			return newClient(cached, ep, id), nil
		}

		sshConfig, err := buildSSHConfig(id)
		if err != nil {
			return nil, fmt.Errorf("构建 ssh 配置失败 '%s': %w", key, err)
		}

		conn, err := c.dialer.DialContext(ctx, "tcp", ep.Addr())
		if err != nil {
			return nil, fmt.Errorf("连接目标失败 '%s': %w", ep.Addr(), err)
		}

		// 使用 NewClientConn 接管底层的 conn
		ncc, chans, reqs, err := ssh.NewClientConn(conn, ep.Addr(), sshConfig)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("ssh 握手失败 '%s': %w", ep.Addr(), err)
		}
		rawClient := ssh.NewClient(ncc, chans, reqs)
		c.clients.Set(key, rawClient)
		return newClient(rawClient, ep, id), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Client), nil
}

// Invalidate 从连接池中移除指定端点的连接
// 连接失败重试前调用,避免复用已失效的连接
func (c *Connector) Invalidate(ep Endpoint, id Identity) {
	key := fmt.Sprintf("%s@%s", id.User, ep.Addr())
	if cached, ok := c.clients.Get(key); ok {
		cached.Close()
		c.clients.Remove(key)
	}
}

// CloseAll 关闭所有缓存的连接 (在程序退出前调用)
func (c *Connector) CloseAll() {
	c.clients.IterCb(func(key string, client *ssh.Client) bool {
		client.Close()
		return true
	})
	c.clients.Clear()
}
