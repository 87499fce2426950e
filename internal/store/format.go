package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"area-api/internal/areacode"
	"area-api/internal/revgeo"
)

// 文件格式（大端）：
// magic[8] | format(uint16) | kind(uint8) | version(uint16 len + bytes) | count(uint32) |
// checksum(uint64, xxhash64 of payload) | payload(zstd)
// code 记录：code, name, keyword, enname（uint32 len + bytes）, hidden(uint8)
// geo 记录：code, center(lat, lon float64), polygons(uint32) { rings(uint32) { points(uint32) { lat, lon } } }
const (
	magic         = "AREAIDX\x00"
	formatVersion = 1

	kindCode uint8 = 1
	kindGeo  uint8 = 2
)

var (
	ErrBadMagic        = errors.New("store: not an index file")
	ErrFormatVersion   = errors.New("store: unsupported index format")
	ErrVersionMismatch = errors.New("store: source version mismatch")
	ErrCorrupt         = errors.New("store: corrupt index file")
	ErrOverBudget      = errors.New("store: index exceeds size budget")
)

// WriteCode 编码并原子写入 code 索引文件
func WriteCode(path, version string, recs []areacode.Record, budget int64) error {
	var w writer
	for _, r := range recs {
		w.str(r.Code)
		w.str(r.Name)
		w.str(r.Keyword)
		w.str(r.EnName)
		w.bool(r.Hidden)
	}
	return writeFile(path, kindCode, version, len(recs), w.buf, budget)
}

// ReadCode 读取 code 索引文件；版本不一致返回 ErrVersionMismatch
func ReadCode(path, version string, budget int64) ([]areacode.Record, error) {
	n, payload, err := readFile(path, kindCode, version, budget)
	if err != nil {
		return nil, err
	}
	r := reader{buf: payload}
	recs := make([]areacode.Record, 0, min(n, len(payload)/17))
	for i := 0; i < n; i++ {
		rec := areacode.Record{Code: r.str(), Name: r.str(), Keyword: r.str(), EnName: r.str(), Hidden: r.bool()}
		if r.err != nil {
			return nil, r.err
		}
		recs = append(recs, rec)
	}
	if len(r.buf) != r.off {
		return nil, ErrCorrupt
	}
	return recs, nil
}

// WriteGeo 编码并原子写入 geo 索引文件；包围盒在构建时重算，不落盘
func WriteGeo(path, version string, recs []revgeo.Record, budget int64) error {
	var w writer
	for _, r := range recs {
		w.str(r.Code)
		w.point(r.Center)
		w.u32(uint32(len(r.Polygons)))
		for _, pg := range r.Polygons {
			w.u32(uint32(len(pg.Rings)))
			for _, ring := range pg.Rings {
				w.u32(uint32(len(ring)))
				for _, pt := range ring {
					w.point(pt)
				}
			}
		}
	}
	return writeFile(path, kindGeo, version, len(recs), w.buf, budget)
}

// ReadGeo 读取 geo 索引文件
func ReadGeo(path, version string, budget int64) ([]revgeo.Record, error) {
	n, payload, err := readFile(path, kindGeo, version, budget)
	if err != nil {
		return nil, err
	}
	r := reader{buf: payload}
	recs := make([]revgeo.Record, 0, min(n, len(payload)/24))
	for i := 0; i < n; i++ {
		rec := revgeo.Record{Code: r.str(), Center: r.point()}
		np := r.count(4)
		for j := 0; j < np && r.err == nil; j++ {
			nr := r.count(4)
			pg := revgeo.Polygon{Rings: make([][]revgeo.Point, 0, nr)}
			for k := 0; k < nr && r.err == nil; k++ {
				npt := r.count(16)
				ring := make([]revgeo.Point, 0, npt)
				for m := 0; m < npt && r.err == nil; m++ {
					ring = append(ring, r.point())
				}
				pg.Rings = append(pg.Rings, ring)
			}
			rec.Polygons = append(rec.Polygons, pg)
		}
		if r.err != nil {
			return nil, r.err
		}
		recs = append(recs, rec)
	}
	if len(r.buf) != r.off {
		return nil, ErrCorrupt
	}
	return recs, nil
}

func writeFile(path string, kind uint8, version string, count int, payload []byte, budget int64) error {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		return err
	}
	defer enc.Close()
	compressed := enc.EncodeAll(payload, nil)

	var h writer
	h.buf = append(h.buf, magic...)
	h.u16(formatVersion)
	h.buf = append(h.buf, kind)
	h.u16(uint16(len(version)))
	h.buf = append(h.buf, version...)
	h.u32(uint32(count))
	h.u64(xxhash.Sum64(payload))
	if int64(len(h.buf)+len(compressed)) > budget || int64(len(payload)) > budget {
		return fmt.Errorf("%w: %d bytes (budget %d)", ErrOverBudget, len(payload), budget)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	// NOTE: 先写临时文件再 rename，读者要么看到旧文件要么看到完整新文件。
	if _, err := tmp.Write(h.buf); err == nil {
		_, err = tmp.Write(compressed)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

func readFile(path string, kind uint8, version string, budget int64) (int, []byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, nil, err
	}
	if fi.Size() > budget {
		return 0, nil, ErrOverBudget
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return 0, nil, ErrBadMagic
	}
	r := reader{buf: data, off: len(magic)}
	if r.u16() != formatVersion {
		return 0, nil, ErrFormatVersion
	}
	if k := r.u8(); k != kind {
		return 0, nil, fmt.Errorf("%w: kind %d", ErrCorrupt, k)
	}
	v := string(r.bytes(int(r.u16())))
	count := int(r.u32())
	sum := r.u64()
	if r.err != nil {
		return 0, nil, r.err
	}
	if v != version {
		return 0, nil, fmt.Errorf("%w: file %q, source %q", ErrVersionMismatch, v, version)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(budget)))
	if err != nil {
		return 0, nil, err
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(data[r.off:], nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if xxhash.Sum64(payload) != sum {
		return 0, nil, fmt.Errorf("%w: checksum", ErrCorrupt)
	}
	return count, payload, nil
}

type writer struct{ buf []byte }

func (w *writer) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) bool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) point(p revgeo.Point) {
	w.u64(math.Float64bits(p.Lat))
	w.u64(math.Float64bits(p.Lon))
}

// reader 顺序解码；首次越界后 err 置为 ErrCorrupt，后续读取返回零值
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = ErrCorrupt
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) str() string { return string(r.bytes(int(r.u32()))) }

func (r *reader) bool() bool { return r.u8() != 0 }

func (r *reader) point() revgeo.Point {
	lat := math.Float64frombits(r.u64())
	lon := math.Float64frombits(r.u64())
	return revgeo.Point{Lat: lat, Lon: lon}
}

// count 读取元素个数，并按每个元素最小字节数校验剩余长度，防止损坏文件触发巨量分配
func (r *reader) count(minSize int) int {
	n := int(r.u32())
	if r.err == nil && n*minSize > len(r.buf)-r.off {
		r.err = ErrCorrupt
		return 0
	}
	return n
}
