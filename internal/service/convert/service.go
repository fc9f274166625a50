package convert

import (
	"go.uber.org/zap"
)

// Converter 把站点富文本编辑器产出的HTML片段转换为Markdown
// 纯函数: 相同输入必得到相同输出, 不依赖网络与文件系统
type Converter interface {
	Convert(rawHTML string) string
}

type neConverter struct {
	logger *zap.Logger
}

func InitConverter(logger *zap.Logger) Converter {
	return &neConverter{
		logger: logger,
	}
}
