package convert

// ListType 当前递归作用域所属的列表类型
type ListType int

const (
	ListNone ListType = iota
	ListOrdered
	ListUnordered
)

// Context 单篇文档递归转换中携带的临时状态
// 值类型按值传递, 进入新的列表作用域时由列表容器克隆,
// 兄弟列表之间互不共享计数器
type Context struct {
	ParentListType ListType
	ListIndex      int
	InCodeBlock    bool
}

func (cc Context) enterList(t ListType) Context {
	return Context{
		ParentListType: t,
		ListIndex:      0,
		InCodeBlock:    cc.InCodeBlock,
	}
}
