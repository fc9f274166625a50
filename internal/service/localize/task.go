package localize

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	remoteImageRe = regexp.MustCompile(`!\[([^\]]*)\]\((https?://[^)\s]+)\)`)
	dataImageRe   = regexp.MustCompile(`!\[([^\]]*)\]\((data:image/[^)]+)\)`)
)

// 站点对加载失败的图片塞的占位图(1x1 GIF),不值得本地化
const brokenImageMarker = "R0lGODlhAQABAIAAAAAAAP"

// imageTask 一条待本地化的图片引用,生命周期只在单个文件的处理过程内
type imageTask struct {
	SourceLocator    string
	ContentHash      string
	TargetFileName   string
	OriginalFragment string
	Embedded         bool
	Succeeded        bool
	Fetched          bool
}

// scanTasks 扫描Markdown中的远程图片与data URI图片引用,按定位符去重,
// 同一张图出现多次只下载一次
func scanTasks(content string) []*imageTask {
	seen := map[string]bool{}
	var tasks []*imageTask

	appendTask := func(match []string, embedded bool) {
		locator := match[2]
		if seen[locator] || strings.Contains(locator, brokenImageMarker) {
			return
		}
		seen[locator] = true
		tasks = append(tasks, &imageTask{
			SourceLocator:    locator,
			ContentHash:      contentHash(locator),
			TargetFileName:   targetFileName(locator, embedded),
			OriginalFragment: match[0],
			Embedded:         embedded,
		})
	}

	for _, m := range remoteImageRe.FindAllStringSubmatch(content, -1) {
		appendTask(m, false)
	}
	for _, m := range dataImageRe.FindAllStringSubmatch(content, -1) {
		appendTask(m, true)
	}
	return tasks
}

// rewriteReferences 把命中已解析定位符的引用全部改写为本地相对路径。
// 按定位符匹配而不是按原始片段替换,同一URL配不同alt的引用也能命中
func rewriteReferences(content string, resolved map[string]string) (string, int) {
	count := 0
	for _, re := range []*regexp.Regexp{remoteImageRe, dataImageRe} {
		content = re.ReplaceAllStringFunc(content, func(frag string) string {
			m := re.FindStringSubmatch(frag)
			local, ok := resolved[m[2]]
			if !ok {
				return frag
			}
			count++
			return "![" + m[1] + "](" + local + ")"
		})
	}
	return content, count
}

// contentHash 定位符md5的前16位,同一定位符永远落到同一个文件名
func contentHash(locator string) string {
	sum := md5.Sum([]byte(locator))
	return hex.EncodeToString(sum[:])[:16]
}

// targetFileName 内容寻址命名: 内容哈希 + 推断出的扩展名
func targetFileName(locator string, embedded bool) string {
	if embedded {
		return contentHash(locator) + extFromMediaType(locator)
	}
	return contentHash(locator) + extFromURL(locator)
}

// fragmentPreview 日志用的引用预览,data URI动辄几十KB必须截断
func fragmentPreview(frag string) string {
	const max = 80
	runes := []rune(frag)
	if len(runes) <= max {
		return frag
	}
	return string(runes[:max]) + "..."
}

var knownImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".bmp":  true,
	".ico":  true,
}

func extFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if knownImageExts[ext] {
		return ext
	}
	return ".jpg"
}

func extFromMediaType(dataURI string) string {
	rest := strings.TrimPrefix(dataURI, "data:image/")
	mediaType := rest
	if idx := strings.IndexAny(rest, ";,"); idx >= 0 {
		mediaType = rest[:idx]
	}
	switch strings.ToLower(mediaType) {
	case "png":
		return ".png"
	case "jpeg", "jpg":
		return ".jpg"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	case "svg+xml", "svg":
		return ".svg"
	case "bmp":
		return ".bmp"
	case "x-icon", "vnd.microsoft.icon":
		return ".ico"
	default:
		return ".jpg"
	}
}

// decodeDataURI 解出内嵌图片的字节,base64与百分号编码两种形态
func decodeDataURI(dataURI string) ([]byte, error) {
	comma := strings.Index(dataURI, ",")
	if comma < 0 {
		return nil, fmt.Errorf("data URI缺少数据段")
	}
	header, payload := dataURI[:comma], dataURI[comma+1:]
	if strings.Contains(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("base64解码失败: %w", err)
		}
		return data, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return []byte(payload), nil
	}
	return []byte(decoded), nil
}
