package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"area-api/internal/areadao"
	"area-api/internal/config"
	"area-api/internal/source"
	"area-api/internal/store"
)

// 文档注释：命令行冒烟客户端
// 背景：直接打开数据源并构建引擎（不经过 HTTP），执行一次查询后以 JSON 输出；默认值来自环境变量，可被参数覆盖。
func newRootCmd(cfg *config.Config) *cobra.Command {
	p := cfg.Source
	indexDir := cfg.IndexDir
	maxKm := cfg.GeoMaxKm
	kind := string(p.Kind)

	root := &cobra.Command{
		Use:          "areactl",
		Short:        "Query the area lookup engine from the command line",
		SilenceUsage: true,
	}
	f := root.PersistentFlags()
	f.StringVar(&kind, "source", kind, "data source kind: csv | sqlite | postgres")
	f.StringVar(&p.CodePath, "code-csv", p.CodePath, "area code CSV path")
	f.StringVar(&p.GeoPath, "geo-csv", p.GeoPath, "area geo CSV/GeoJSON path")
	f.BoolVar(&p.Gzip, "gzip", p.Gzip, "CSV files are gzip compressed")
	f.StringVar(&p.SQLitePath, "sqlite", p.SQLitePath, "SQLite database path")
	f.StringVar(&p.PostgresDSN, "pg-dsn", p.PostgresDSN, "PostgreSQL DSN")
	f.StringVar(&indexDir, "index-dir", indexDir, "persisted index directory (empty disables)")
	f.Float64Var(&maxKm, "geo-max-km", maxKm, "reverse geocoding distance ceiling, 0 = unlimited")

	// run 打开引擎执行 fn 并输出结果
	run := func(cmd *cobra.Command, fn func(d *areadao.DAO) (any, error)) error {
		p.Kind = source.Kind(kind)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		src, err := store.OpenSource(ctx, p, indexDir, cfg.IndexSize)
		if err != nil {
			return err
		}
		d, err := areadao.Open(ctx, src, areadao.WithMaxDistanceKm(maxKm))
		if err != nil {
			_ = src.Close()
			return err
		}
		defer d.Close()
		v, err := fn(d)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	root.AddCommand(&cobra.Command{
		Use:   "children [code]",
		Short: "List the direct children of a code (top level when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			return run(cmd, func(d *areadao.DAO) (any, error) { return d.Children(code) })
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "find <code>",
		Short: "Print the path from the top level down to a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(d *areadao.DAO) (any, error) { return d.Find(args[0]) })
		},
	})
	var limit int
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search area names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(d *areadao.DAO) (any, error) { return d.Search(args[0], limit) })
		},
	}
	searchCmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	root.AddCommand(searchCmd)
	root.AddCommand(&cobra.Command{
		Use:   "related <code>",
		Short: "Print sibling lists for every level on the path to a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(d *areadao.DAO) (any, error) { return d.Related(args[0]) })
		},
	})
	var coordSys string
	geoCmd := &cobra.Command{
		Use:   "geo <lat> <lng>",
		Short: "Reverse geocode a coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("lat: %w", err)
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("lng: %w", err)
			}
			return run(cmd, func(d *areadao.DAO) (any, error) { return d.Locate(lat, lng, coordSys) })
		},
	}
	geoCmd.Flags().StringVar(&coordSys, "coord-sys", "", "input coordinate system: WGS-84 | GCJ-02 | BD-09")
	root.AddCommand(geoCmd)
	root.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Load the dataset and print index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(d *areadao.DAO) (any, error) { return d.Stats(), nil })
		},
	})
	return root
}
