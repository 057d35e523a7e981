package ssh

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// buildSSHConfig 根据 Identity 构建 ssh.ClientConfig
// KeyPath 优先于 Password
func buildSSHConfig(id Identity) (*ssh.ClientConfig, error) {
	if id.User == "" {
		return nil, fmt.Errorf("用户名不能为空")
	}

	authMethods := []ssh.AuthMethod{}
	switch {
	case id.KeyPath != "":
		keyBytes, err := os.ReadFile(expandHomeDir(id.KeyPath))
		if err != nil {
			return nil, fmt.Errorf("读取私钥文件失败: %w", err)
		}
		var signer ssh.Signer
		if id.Passphrase != "" {
			// 有密码的私钥
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(id.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("解析私钥失败: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	case id.Password != "":
		authMethods = append(authMethods, ssh.Password(id.Password))
	default:
		return nil, fmt.Errorf("未提供密码或私钥路径")
	}

	return &ssh.ClientConfig{
		User:            id.User,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: 生产环境应集成 known_hosts 检查
		Timeout:         dialTimeout,
	}, nil
}

// expandHomeDir 简单的路径处理辅助函数
func expandHomeDir(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + path[1:]
		}
	}
	return path
}
