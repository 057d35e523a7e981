package ssh

import (
	"time"

	"golang.org/x/crypto/ssh"
)

// StartKeepAlive 开启一个协程,定期向 SSH Server 发送心跳
// 大文件传输期间校验连接可能长时间空闲,心跳避免被中间设备断开
// fallback: 可选的回调函数,心跳失败时会关闭连接后调用
func StartKeepAlive(client *ssh.Client, interval time.Duration, fallback func(err error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			<-ticker.C

			// "keepalive@openssh.com" 是 OpenSSH 标准的心跳请求类型
			// wantReply = true: 要求服务器回复,服务器挂了或网络断了 SendRequest 会报错
			_, _, err := client.SendRequest("keepalive@openssh.com", true, nil)
			if err != nil {
				// 心跳失败说明连接已经断了
				// 显式关闭 Client,正在使用的 Session 也会收到错误通知
				client.Close()
				if fallback != nil {
					fallback(err)
				}
				return
			}
		}
	}()
}
