package areacode

// Item：对外返回的区域节点（值拷贝，不引用索引内部结构）
type Item struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Leaf bool   `json:"leaf"`
}

// RelatedItem：联动选择器的一项，Selected 标记位于目标路径上的节点
type RelatedItem struct {
	Item
	Selected bool `json:"selected"`
}

// SearchResult：检索命中的完整路径与得分
type SearchResult struct {
	Path  []Item  `json:"path"`
	Score float64 `json:"score"`
}

// Record：数据源中的一行编码数据
// Keyword 为空格分隔的别名；EnName 为英文/拼音名；Hidden 的节点保留在树中但不对外展示
type Record struct {
	Code    string
	Name    string
	Keyword string
	EnName  string
	Hidden  bool
}
