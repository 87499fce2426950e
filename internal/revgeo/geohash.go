package revgeo

// 文档注释：轻量 geohash 编码（base32）
// 背景：用作反查结果缓存键；精度 6 字符约 1.2km，7 字符约 150m。
// 约束：仅用于缓存，不参与行政区判定。
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

func Geohash(lat, lon float64, precision int) string {
	latInt := [2]float64{-90, 90}
	lonInt := [2]float64{-180, 180}
	bit, ch := 0, 0
	even := true
	out := make([]byte, 0, precision)
	for len(out) < precision {
		if even {
			mid := (lonInt[0] + lonInt[1]) / 2
			if lon >= mid {
				ch |= 1 << (4 - bit)
				lonInt[0] = mid
			} else {
				lonInt[1] = mid
			}
		} else {
			mid := (latInt[0] + latInt[1]) / 2
			if lat >= mid {
				ch |= 1 << (4 - bit)
				latInt[0] = mid
			} else {
				latInt[1] = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			out = append(out, base32[ch])
			bit, ch = 0, 0
		}
	}
	return string(out)
}
