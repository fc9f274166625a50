package localize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errTooManyRedirects = errors.New("重定向次数超过上限")

func (l *localizer) LocalizeFiles(ctx context.Context, files []string) (*Result, error) {
	if err := os.MkdirAll(l.imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建图片目录失败: %w", err)
	}
	result := &Result{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Files++
		if err := l.localizeFile(ctx, file, result); err != nil {
			l.logger.Warn("本地化单个文件失败", zap.String("file", file), zap.Error(err))
		}
	}
	l.logger.Info("图片本地化完成",
		zap.Int("files", result.Files),
		zap.Int("rewritten", result.Rewritten),
		zap.Int("downloaded", result.Downloaded),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (l *localizer) localizeFile(ctx context.Context, file string, result *Result) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	content := string(data)
	tasks := scanTasks(content)
	if len(tasks) == 0 {
		return nil
	}

	var remote, embedded []*imageTask
	for _, t := range tasks {
		if t.Embedded {
			embedded = append(embedded, t)
		} else {
			remote = append(remote, t)
		}
	}

	// 远程图片走并发批次,每个任务只写自己的task,统计在批次结束后汇总
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)
	for _, task := range remote {
		task := task
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := l.resolveRemote(gctx, task); err != nil {
				l.logger.Warn("图片下载失败, 保留原始引用",
					zap.String("url", task.SourceLocator), zap.Error(err))
			}
			return nil
		})
	}
	_ = group.Wait()

	// 内嵌图片不走网络,网络批次结束后串行解码落盘
	for _, task := range embedded {
		if ctx.Err() != nil {
			break
		}
		if err := l.resolveEmbedded(task); err != nil {
			l.logger.Warn("内嵌图片写入失败, 保留原始引用",
				zap.String("引用", fragmentPreview(task.OriginalFragment)), zap.Error(err))
		}
	}

	relDir, err := filepath.Rel(filepath.Dir(file), l.imagesDir)
	if err != nil {
		relDir = "images"
	}

	resolved := make(map[string]string, len(tasks))
	for _, task := range tasks {
		if task.Fetched {
			result.Downloaded++
		}
		if !task.Succeeded {
			result.Failed++
			continue
		}
		resolved[task.SourceLocator] = "./" + filepath.ToSlash(filepath.Join(relDir, task.TargetFileName))
	}
	if len(resolved) == 0 {
		return nil
	}
	content, rewritten := rewriteReferences(content, resolved)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		return fmt.Errorf("回写文件失败: %w", err)
	}
	result.Rewritten += rewritten
	return nil
}

// resolveRemote 下载远程图片,目标文件已存在时直接视为成功(幂等重跑零下载)
func (l *localizer) resolveRemote(ctx context.Context, task *imageTask) error {
	target := filepath.Join(l.imagesDir, task.TargetFileName)
	if _, err := os.Stat(target); err == nil {
		task.Succeeded = true
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.SourceLocator, nil)
	if err != nil {
		return fmt.Errorf("构造图片请求失败: %w", err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	if l.referer != "" {
		req.Header.Set("Referer", l.referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求图片失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("图片响应状态异常: %d", resp.StatusCode)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("创建图片文件失败: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(target)
		return fmt.Errorf("写入图片失败: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("关闭图片文件失败: %w", err)
	}
	task.Succeeded = true
	task.Fetched = true
	return nil
}

func (l *localizer) resolveEmbedded(task *imageTask) error {
	target := filepath.Join(l.imagesDir, task.TargetFileName)
	if _, err := os.Stat(target); err == nil {
		task.Succeeded = true
		return nil
	}
	data, err := decodeDataURI(task.SourceLocator)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("写入图片失败: %w", err)
	}
	task.Succeeded = true
	task.Fetched = true
	return nil
}
