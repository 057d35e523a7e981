package sftp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Upload 把一个本地文件上传到远程路径,返回实际写入远端的字节数
// 调用方通过对比返回值与文件大小判断是否发生了部分传输
func (c *Client) Upload(ctx context.Context, localPath, remotePath string, progress ProgressCallback) (int64, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return 0, fmt.Errorf("stat local path failed: %w", err)
	}
	return c.uploadFile(ctx, localPath, remotePath, info.Size(), progress)
}

func (c *Client) uploadFile(ctx context.Context, localPath, remotePath string, size int64, progress ProgressCallback) (int64, error) {
	srcFile, err := os.Open(localPath)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := c.sftpClient.Create(remotePath)
	if err != nil {
		return 0, err
	}
	defer dstFile.Close()

	// 写入字节计数,进度回调和返回值共用
	var written atomic.Int64
	count := func(n int) {
		written.Add(int64(n))
		if progress != nil {
			progress(n)
		}
	}

	// 只有1个线程或文件很小,直接流式传输(减少 overhead)
	if c.config.ThreadsPerFile <= 1 || size < c.config.ChunkSize {
		err := c.streamTransfer(ctx, srcFile, dstFile, count)
		return written.Load(), err
	}

	// 多线程分块上传
	g, ctx := errgroup.WithContext(ctx)
	chunkSize := c.config.ChunkSize

	// 信号量限制并发数
	sem := make(chan struct{}, c.config.ThreadsPerFile)

	for offset := int64(0); offset < size; offset += chunkSize {
		sem <- struct{}{} // acquire

		g.Go(func() error {
			defer func() { <-sem }() // release

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			currentChunkSize := chunkSize
			if offset+currentChunkSize > size {
				currentChunkSize = size - offset
			}

			// ReadAt / WriteAt 都是并发安全的
			buf := make([]byte, currentChunkSize)
			n, err := srcFile.ReadAt(buf, offset)
			if err != nil && err != io.EOF {
				return fmt.Errorf("read local at %d failed: %w", offset, err)
			}
			if n == 0 {
				return nil
			}

			// buf[:n] 避免 EOF 导致的 buffer 未填满问题
			if _, err := dstFile.WriteAt(buf[:n], offset); err != nil {
				return fmt.Errorf("write remote at %d failed: %w", offset, err)
			}

			count(n)
			return nil
		})
	}

	err = g.Wait()
	return written.Load(), err
}

// streamTransfer 简单的流式传输
func (c *Client) streamTransfer(ctx context.Context, r io.Reader, w io.Writer, count func(n int)) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, wErr := w.Write(buf[:n]); wErr != nil {
				return wErr
			}
			count(n)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
