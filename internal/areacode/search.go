package areacode

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// DefaultLimit 检索条数未指定（<=0）时的默认值
const DefaultLimit = 10

const (
	matchNone = iota
	matchSubstring
	matchPrefix
	matchExact
)

// 文档注释：名称检索
// 背景：对全树可见节点做关键字匹配，返回命中节点的完整路径；查询按非字母数字字符切分为多个词。
// 规则：每个词都需命中节点自身或其祖先的关键字，且至少一个词命中节点自身；
// 排序依次为 自身最佳匹配(完全>前缀>包含)、总匹配度、层级(浅优先)、编码升序。
// 返回：无命中返回空切片（非错误）。
func (x *Index) Search(query string, limit int) []SearchResult {
	if limit <= 0 {
		limit = DefaultLimit
	}
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []SearchResult{}
	}
	type hit struct {
		n     *node
		own   int
		total int
	}
	var hits []hit
	for _, n := range x.order {
		if n.hidden {
			continue
		}
		own, total, ok := score(n, tokens)
		if !ok {
			continue
		}
		hits = append(hits, hit{n: n, own: own, total: total})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.own != b.own {
			return a.own > b.own
		}
		if a.total != b.total {
			return a.total > b.total
		}
		if a.n.depth != b.n.depth {
			return a.n.depth < b.n.depth
		}
		return a.n.code < b.n.code
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, SearchResult{Path: path(h.n), Score: float64(h.own*len(tokens)*matchExact + h.total)})
	}
	return out
}

func score(n *node, tokens []string) (own, total int, ok bool) {
	for _, t := range tokens {
		q := bestMatch(t, n.terms)
		if q > own {
			own = q
		}
		for p := n.parent; p != nil && p.depth > 0 && q < matchExact; p = p.parent {
			if p.hidden {
				continue
			}
			if aq := bestMatch(t, p.terms); aq > q {
				q = aq
			}
		}
		if q == matchNone {
			return 0, 0, false
		}
		total += q
	}
	return own, total, own > matchNone
}

func bestMatch(token string, terms []string) int {
	best := matchNone
	for _, term := range terms {
		switch {
		case term == token:
			return matchExact
		case strings.HasPrefix(term, token):
			best = max(best, matchPrefix)
		case strings.Contains(term, token):
			best = max(best, matchSubstring)
		}
	}
	return best
}

// 全角转半角并做大小写折叠；Caser 有状态，每次调用新建
func normalize(s string) string {
	return strings.TrimSpace(cases.Fold().String(width.Fold.String(s)))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func buildTerms(name, keyword, enName string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, s := range []string{name, enName} {
		words := tokenize(s)
		add(strings.Join(words, ""))
		for _, w := range words {
			add(w)
		}
	}
	for _, w := range tokenize(keyword) {
		add(w)
	}
	return out
}
