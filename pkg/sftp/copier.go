package sftp

import (
	"context"
	"fmt"
	"strings"

	"example.com/FtBench/pkg/logger"
	"example.com/FtBench/pkg/models"
	"example.com/FtBench/pkg/ssh"
)

// Uploader 把 SFTP 上传包装成基准测试需要的远程复制能力
// 连接惰性建立并复用;一旦传输出错就丢弃连接,下次调用重新拨号,
// 这样编排器的首文件重试才能真正重新建连而不是复用坏连接
type Uploader struct {
	connector *ssh.Connector
	endpoint  ssh.Endpoint
	identity  ssh.Identity
	remoteDir string
	opts      []Option

	client    *Client
	mkdirDone bool
}

// NewUploader 创建上传器,remoteDir 为远端家目录下的相对目录
func NewUploader(connector *ssh.Connector, ep ssh.Endpoint, id ssh.Identity, remoteDir string, opts ...Option) *Uploader {
	return &Uploader{
		connector: connector,
		endpoint:  ep,
		identity:  id,
		remoteDir: strings.TrimPrefix(remoteDir, "/"),
		opts:      opts,
	}
}

// Copy 上传一个文件到远端目录,返回实际写入的字节数
func (u *Uploader) Copy(ctx context.Context, file models.FileSpec, progress func(n int)) (int64, error) {
	client, err := u.ensureClient(ctx)
	if err != nil {
		return 0, err
	}

	remotePath := client.JoinPath(u.remoteDir, file.Name)
	written, err := client.Upload(ctx, file.LocalPath, remotePath, ProgressCallback(progress))
	if err != nil {
		u.discard()
		return written, fmt.Errorf("上传 '%s' 失败: %w", file.Name, err)
	}
	return written, nil
}

// Close 释放 SFTP 会话 (底层 ssh 连接由 Connector 统一关闭)
func (u *Uploader) Close() error {
	if u.client != nil {
		err := u.client.Close()
		u.client = nil
		return err
	}
	return nil
}

func (u *Uploader) ensureClient(ctx context.Context) (*Client, error) {
	if u.client != nil {
		return u.client, nil
	}
	sshCli, err := u.connector.Connect(ctx, u.endpoint, u.identity)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(sshCli, u.opts...)
	if err != nil {
		u.connector.Invalidate(u.endpoint, u.identity)
		return nil, err
	}
	if !u.mkdirDone {
		if err := client.MkdirAll(u.remoteDir); err != nil {
			// 目录可能已存在,留给 Create 去报真正的错误
			logger.Logger.Debug("创建远端目录失败", "dir", u.remoteDir, "error", err)
		}
		u.mkdirDone = true
	}
	u.client = client
	return client, nil
}

func (u *Uploader) discard() {
	if u.client != nil {
		u.client.Close()
		u.client = nil
	}
	u.connector.Invalidate(u.endpoint, u.identity)
	u.mkdirDone = false
}
