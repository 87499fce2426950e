package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"

	"area-api/internal/areacode"
	"area-api/internal/logger"
	"area-api/internal/revgeo"
)

// CodeLayout 编码文件列布局（从 0 开始，-1 表示无此列）
type CodeLayout struct {
	Skip    int
	Code    int
	Name    int
	Keyword int
	EnName  int
	Hide    int
}

// GeoLayout 地理文件列布局（从 0 开始）
type GeoLayout struct {
	Skip    int
	Code    int
	Center  int
	Polygon int
}

// 默认布局：code,name,keyword,enname,hide 与 code,center,polygon，各跳过 1 行表头
var (
	DefaultCodeLayout = CodeLayout{Skip: 1, Code: 0, Name: 1, Keyword: 2, EnName: 3, Hide: 4}
	DefaultGeoLayout  = GeoLayout{Skip: 1, Code: 0, Center: 1, Polygon: 2}
)

// 文档注释：CSV 平面文件数据源
// 背景：编码文件必需，地理文件可选；Gzip 为真时两者均按 gzip 解压。地理文件以 .geojson/.json 结尾时按 GeoJSON 解析。
// 约束：版本为原始文件字节的 xxhash64，文件内容不变则版本不变。
type CSV struct {
	CodePath   string
	GeoPath    string
	Gzip       bool
	CodeLayout CodeLayout
	GeoLayout  GeoLayout
}

// NewCSV 校验文件存在并使用默认列布局
func NewCSV(codePath, geoPath string, gz bool) (*CSV, error) {
	if strings.TrimSpace(codePath) == "" {
		return nil, errors.New("csv code path can't be empty")
	}
	if _, err := os.Stat(codePath); err != nil {
		return nil, fmt.Errorf("csv code file: %w", err)
	}
	if geoPath != "" {
		if _, err := os.Stat(geoPath); err != nil {
			return nil, fmt.Errorf("csv geo file: %w", err)
		}
	}
	return &CSV{CodePath: codePath, GeoPath: geoPath, Gzip: gz, CodeLayout: DefaultCodeLayout, GeoLayout: DefaultGeoLayout}, nil
}

func (s *CSV) Name() string { return "csv:" + s.CodePath }

func (s *CSV) Close() error { return nil }

func (s *CSV) CodeVersion(ctx context.Context) (string, error) { return fileVersion(s.CodePath) }

func (s *CSV) GeoVersion(ctx context.Context) (string, error) {
	if s.GeoPath == "" {
		return "", nil
	}
	return fileVersion(s.GeoPath)
}

func (s *CSV) CodeRecords(ctx context.Context) ([]areacode.Record, error) {
	data, err := s.read(s.CodePath)
	if err != nil {
		return nil, err
	}
	lay := s.CodeLayout
	var out []areacode.Record
	err = eachRow(data, lay.Skip, func(row []string) error {
		code := strings.TrimSpace(col(row, lay.Code))
		if code == "" {
			return nil
		}
		hide := strings.TrimSpace(col(row, lay.Hide))
		out = append(out, areacode.Record{
			Code:    code,
			Name:    col(row, lay.Name),
			Keyword: col(row, lay.Keyword),
			EnName:  col(row, lay.EnName),
			Hidden:  hide == "1" || strings.EqualFold(hide, "true"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.CodePath, err)
	}
	logger.L().Debug("csv_code_loaded", "path", s.CodePath, "rows", len(out))
	return out, nil
}

func (s *CSV) GeoRecords(ctx context.Context) ([]revgeo.Record, error) {
	if s.GeoPath == "" {
		return nil, nil
	}
	data, err := s.read(s.GeoPath)
	if err != nil {
		return nil, err
	}
	plain := strings.ToLower(strings.TrimSuffix(s.GeoPath, ".gz"))
	if strings.HasSuffix(plain, ".geojson") || strings.HasSuffix(plain, ".json") {
		return revgeo.ParseGeoJSON(bytes.NewReader(data))
	}
	lay := s.GeoLayout
	var out []revgeo.Record
	skipped := 0
	err = eachRow(data, lay.Skip, func(row []string) error {
		rec, ok, err := revgeo.ParseRecord(col(row, lay.Code), col(row, lay.Center), col(row, lay.Polygon))
		if err != nil {
			return err
		}
		if !ok || rec.Code == "" {
			skipped++
			return nil
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.GeoPath, err)
	}
	logger.L().Debug("csv_geo_loaded", "path", s.GeoPath, "rows", len(out), "skipped", skipped)
	return out, nil
}

func (s *CSV) read(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !s.Gzip {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return data, nil
}

func eachRow(data []byte, skip int, fn func(row []string) error) error {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true
	for i := 0; ; i++ {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if i < skip {
			continue
		}
		if err := fn(row); err != nil {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func col(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func fileVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}
