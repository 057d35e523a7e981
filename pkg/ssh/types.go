package ssh

import (
	"context"
	"fmt"
	"net"
)

// Dialer 定义网络连接行为的接口
// 便于在测试中替换底层拨号实现
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Identity 定义认证信息
// Password 和 KeyPath 至少提供一个,KeyPath 优先
type Identity struct {
	User       string `yaml:"user"`
	Password   string `yaml:"password,omitempty"`
	KeyPath    string `yaml:"key_path,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty"` // 私钥密码
}

// Endpoint 一个 ssh 连接端点
// 基准测试里传输目标和校验目标可能是不同的端点
type Endpoint struct {
	Host string
	Port uint16
}

// Addr 返回 host:port 形式的地址
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}
