// 包 areacode：行政区划编码树（层级索引、路径还原、同级联动与名称检索）
package areacode

import "strings"

// 编码分段宽度：省/市/县各 2 位，乡镇/村各 3 位
var segmentWidths = []int{2, 2, 2, 3, 3}

// MaxDepth 编码树最大层级
const MaxDepth = 5

// 文档注释：将编码拆分为逐级前缀
// 背景：编码深度完全由字符串结构决定，例如 "441403" → ["44","4414","441403"]。
// 约束：长度不落在分段边界（2/4/6/9/12）或含非数字字符时返回 nil，调用方视为 NotFound。
func Segments(code string) []string {
	code = strings.TrimSpace(code)
	if code == "" || !isDigits(code) {
		return nil
	}
	out := make([]string, 0, MaxDepth)
	end := 0
	for _, w := range segmentWidths {
		end += w
		if end > len(code) {
			return nil
		}
		out = append(out, code[:end])
		if end == len(code) {
			return out
		}
	}
	return nil
}

// Valid 判断编码结构是否合法
func Valid(code string) bool { return Segments(code) != nil }

// Depth 返回编码层级（1 起），非法编码返回 0
func Depth(code string) int { return len(Segments(code)) }

// Parent 返回上级编码；顶级编码返回空串
func Parent(code string) string {
	segs := Segments(code)
	if len(segs) < 2 {
		return ""
	}
	return segs[len(segs)-2]
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
