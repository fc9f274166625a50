package entity

import (
	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"
)

// 可归档实体接口
// 使用泛型约束归档层的输入,D是文档类型,必须实现model.Document接口
type Crawlable[D model.Document] interface {
	*ArticleRecord
	ToDocument() D
}
