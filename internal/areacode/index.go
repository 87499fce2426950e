package areacode

import (
	"sort"
	"strings"
)

type node struct {
	code     string
	name     string
	hidden   bool
	depth    int
	parent   *node
	children []*node // 全部子节点，按编码升序
	visible  []*node // 去除隐藏节点后的子节点
	terms    []string
}

func (n *node) item() Item {
	return Item{Code: n.code, Name: n.name, Leaf: len(n.visible) == 0}
}

// 文档注释：行政区划编码索引（CodeIndex）
// 背景：一次性从数据源构建的只读树；构建完成后不再修改，可被任意数量的读者并发访问。
// 约束：不提供节点级增删接口，数据更新只能整体替换索引（见 areadao）。
type Index struct {
	root    *node
	nodes   map[string]*node
	order   []*node // 全部节点按编码升序，供检索遍历
	version string
}

// 文档注释：从记录构建编码树
// 背景：单遍插入后按上级前缀分组，子节点按编码排序，最后统一计算可见子节点与叶子标记。
// 约束：编码结构非法返回 ErrMalformedCode；上级缺失返回 ErrOrphanCode；重复编码以最后一条为准；空数据返回 ErrEmptyIndex。
func Build(records []Record, version string) (*Index, error) {
	nodes := make(map[string]*node, len(records))
	for _, r := range records {
		code := strings.TrimSpace(r.Code)
		segs := Segments(code)
		if segs == nil {
			return nil, &ErrMalformedCode{Code: r.Code}
		}
		name := strings.TrimSpace(r.Name)
		nodes[code] = &node{
			code:   code,
			name:   name,
			hidden: r.Hidden || name == "",
			depth:  len(segs),
			terms:  buildTerms(name, r.Keyword, r.EnName),
		}
	}
	if len(nodes) == 0 {
		return nil, ErrEmptyIndex
	}
	order := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].code < order[j].code })

	root := &node{}
	for _, n := range order {
		parent := root
		if p := Parent(n.code); p != "" {
			parent = nodes[p]
			if parent == nil {
				return nil, &ErrOrphanCode{Code: n.code, Parent: p}
			}
		}
		n.parent = parent
		parent.children = append(parent.children, n)
	}
	finalize(root)
	for _, n := range order {
		finalize(n)
	}
	return &Index{root: root, nodes: nodes, order: order, version: version}, nil
}

func finalize(n *node) {
	for _, c := range n.children {
		if !c.hidden {
			n.visible = append(n.visible, c)
		}
	}
}

// Version 数据源版本（构建时传入）
func (x *Index) Version() string { return x.version }

// Len 节点总数（含隐藏节点）
func (x *Index) Len() int { return len(x.nodes) }

// Has 编码存在且可见
func (x *Index) Has(code string) bool {
	n, ok := x.nodes[code]
	return ok && !n.hidden
}

func (x *Index) lookup(code string) (*node, error) {
	if Segments(code) == nil {
		return nil, ErrNotFound
	}
	n, ok := x.nodes[strings.TrimSpace(code)]
	if !ok || n.hidden {
		return nil, ErrNotFound
	}
	return n, nil
}

// 文档注释：列出下级区域
// 背景：code 为空串表示虚拟根节点，返回顶级区域；否则返回该节点的直接可见子节点（编码升序）。
// 返回：叶子节点返回空切片（非错误）；编码无法解析返回 ErrNotFound。
func (x *Index) Children(code string) ([]Item, error) {
	parent := x.root
	if strings.TrimSpace(code) != "" {
		n, err := x.lookup(code)
		if err != nil {
			return nil, err
		}
		parent = n
	}
	return items(parent.visible), nil
}

// 文档注释：还原从顶级到目标节点的完整路径（含目标节点，自上而下）
// 约束：隐藏的祖先节点不出现在路径中。
func (x *Index) Find(code string) ([]Item, error) {
	n, err := x.lookup(code)
	if err != nil {
		return nil, err
	}
	return path(n), nil
}

// 文档注释：获取路径上每一级的同级区域
// 背景：用于级联选择器按已知编码回填；每一级返回与 Children(上级) 相同的集合，并标记位于路径上的那一项。
// 约束：每个返回层级恰有一项 Selected；隐藏层级跳过。
func (x *Index) Related(code string) ([][]RelatedItem, error) {
	target, err := x.lookup(code)
	if err != nil {
		return nil, err
	}
	var chain []*node
	for n := target; n != nil && n != x.root; n = n.parent {
		chain = append(chain, n)
	}
	out := make([][]RelatedItem, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		if cur.hidden {
			continue
		}
		level := make([]RelatedItem, 0, len(cur.parent.visible))
		for _, s := range cur.parent.visible {
			level = append(level, RelatedItem{Item: s.item(), Selected: s == cur})
		}
		out = append(out, level)
	}
	return out, nil
}

func items(ns []*node) []Item {
	out := make([]Item, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.item())
	}
	return out
}

func path(n *node) []Item {
	out := make([]Item, 0, n.depth)
	for p := n; p != nil && p.depth > 0; p = p.parent {
		if !p.hidden {
			out = append(out, p.item())
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
