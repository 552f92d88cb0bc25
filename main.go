//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voxelsplace/voxbuf/api"
	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/config"
	"github.com/voxelsplace/voxbuf/logging"
	"github.com/voxelsplace/voxbuf/mesh"
	"github.com/voxelsplace/voxbuf/metrics"
	"github.com/voxelsplace/voxbuf/raycast"
	"github.com/voxelsplace/voxbuf/store"
	"github.com/voxelsplace/voxbuf/utils"
	"github.com/voxelsplace/voxbuf/voxel"
)

func usage() {
	fmt.Println("Usage: voxtool [-config file.yaml] <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  gennoise <percent> <radius> <out.vxb>                       (random fill of [-radius, radius)^3)")
	fmt.Println("  fill <in.vxb|-> <x0> <y0> <z0> <x1> <y1> <z1> <#color> <out.vxb>  (fill an inclusive box)")
	fmt.Println("  info <in.vxb>                                               (voxel count, chunk bbox, hash)")
	fmt.Println("  vxb2glb <in.vxb> <out.glb>                                  (greedy mesh -> .glb)")
	fmt.Println("  raycast <in.vxb> <ox> <oy> <oz> <dx> <dy> <dz>              (nearest hit along a ray)")
	fmt.Println("  diff <a.vxb> <b.vxb> <out.vxd>                              (edit stream from a to b)")
	fmt.Println("  patch <in.vxb> <edits.vxd> <out.vxb>                        (apply an edit stream)")
	fmt.Println("  applyjson <in.vxb|-> <edits.json> <out.vxb>                 (apply a JSON edit list)")
	fmt.Println("  store-put <name> <in.vxb> | store-get <name> <out.vxb> | store-ls")
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func need(args []string, n int) {
	if len(args) != n {
		usage()
		os.Exit(1)
	}
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseCoords(args []string) ([]int32, error) {
	out := make([]int32, len(args))
	for i, a := range args {
		n, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", a)
		}
		out[i] = int32(n)
	}
	return out, nil
}

func main() {
	args := os.Args[1:]
	cfgPath := ""
	if len(args) >= 2 && args[0] == "-config" {
		cfgPath, args = args[1], args[2:]
	}
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fail(err)
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fail(err)
	}
	logging.Init(level, os.Stderr)

	comp, err := codec.ParseCompression(cfg.Codec.Compression)
	if err != nil {
		fail(err)
	}
	copts := codec.Options{Compression: comp}

	var (
		reg *prometheus.Registry
		m   *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		m = metrics.New(reg)
	}
	mopts := mesh.Options{Workers: cfg.Mesh.Workers}
	if m != nil {
		mopts.Observer = m
	}

	openStore := func() *store.Store {
		st, err := store.Open(cfg.Store.Path, store.Options{Observer: m})
		if err != nil {
			fail(err)
		}
		return st
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "gennoise":
		need(rest, 3)
		perc, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			fail(err)
		}
		radius, err := strconv.Atoi(rest[1])
		if err != nil {
			fail(err)
		}
		if err := utils.RunGenerateNoise(perc, radius, time.Now().UnixNano(), rest[2], copts); err != nil {
			fail(err)
		}
	case "fill":
		need(rest, 9)
		c, err := parseCoords(rest[1:7])
		if err != nil {
			fail(err)
		}
		a := voxel.WorldCoord{X: c[0], Y: c[1], Z: c[2]}
		b := voxel.WorldCoord{X: c[3], Y: c[4], Z: c[5]}
		if err := utils.RunFill(rest[0], a, b, rest[7], rest[8], copts); err != nil {
			fail(err)
		}
	case "info":
		need(rest, 1)
		if err := utils.RunInfo(rest[0], os.Stdout); err != nil {
			fail(err)
		}
	case "vxb2glb":
		need(rest, 2)
		if err := utils.RunVXB2GLB(rest[0], rest[1], api.Options{Mesh: mopts}); err != nil {
			fail(err)
		}
	case "raycast":
		need(rest, 7)
		f, err := parseFloats(rest[1:])
		if err != nil {
			fail(err)
		}
		ray := raycast.Ray{Origin: mgl32.Vec3{f[0], f[1], f[2]}, Direction: mgl32.Vec3{f[3], f[4], f[5]}}
		if err := utils.RunRaycast(rest[0], ray, os.Stdout, m); err != nil {
			fail(err)
		}
	case "diff":
		need(rest, 3)
		if err := utils.RunDiff(rest[0], rest[1], rest[2]); err != nil {
			fail(err)
		}
	case "patch":
		need(rest, 3)
		if err := utils.RunPatch(rest[0], rest[1], rest[2], copts); err != nil {
			fail(err)
		}
	case "applyjson":
		need(rest, 3)
		edits, err := os.ReadFile(rest[1])
		if err != nil {
			fail(err)
		}
		if err := utils.RunApplyJSON(edits, rest[0], rest[2], copts); err != nil {
			fail(err)
		}
	case "store-put", "store-get", "store-ls":
		if cmd == "store-ls" {
			need(rest, 0)
		} else {
			need(rest, 2)
		}
		st := openStore()
		switch cmd {
		case "store-put":
			err = utils.RunStorePut(st, rest[0], rest[1])
		case "store-get":
			err = utils.RunStoreGet(st, rest[0], rest[1], copts)
		default:
			err = utils.RunStoreLs(st, os.Stdout)
		}
		if cerr := st.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(1)
	}

	if reg != nil {
		if err := metrics.WriteText(os.Stderr, reg); err != nil {
			fail(err)
		}
	}
	logging.LogDebug("operation completed")
}
