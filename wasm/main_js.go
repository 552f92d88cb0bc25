//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxbuf/api"
	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/raycast"
)

func bytesArg(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func toJS(out []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(arr, out)
	return arr
}

func vxb2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vxb bytes")
	}
	out, err := api.VXBToGLB(bytesArg(args[0]), api.Options{Generator: "VXB -> GLB (wasm)"})
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

func diffVxb(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing source or target bytes")
	}
	out, err := api.DiffBytes(bytesArg(args[0]), bytesArg(args[1]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

func patchVxb(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing vxb or vxd bytes")
	}
	out, err := api.PatchBytes(bytesArg(args[0]), bytesArg(args[1]), codec.DefaultOptions)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

// raycastVxb(bytes, ox, oy, oz, dx, dy, dz) returns null on a miss, otherwise
// {x, y, z, distance, normal: [nx, ny, nz] | null}.
func raycastVxb(this js.Value, args []js.Value) any {
	if len(args) < 7 {
		return js.ValueOf("usage: raycastVxb(bytes, ox, oy, oz, dx, dy, dz)")
	}
	var f [6]float32
	for i := range f {
		f[i] = float32(args[i+1].Float())
	}
	ray := raycast.Ray{Origin: mgl32.Vec3{f[0], f[1], f[2]}, Direction: mgl32.Vec3{f[3], f[4], f[5]}}
	hit, ok, err := api.RaycastBytes(bytesArg(args[0]), ray)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	if !ok {
		return js.Null()
	}
	result := map[string]any{
		"x":        int(hit.Coord.X),
		"y":        int(hit.Coord.Y),
		"z":        int(hit.Coord.Z),
		"distance": float64(hit.Distance),
		"normal":   nil,
	}
	if hit.HasNormal {
		result["normal"] = []any{int(hit.Normal[0]), int(hit.Normal[1]), int(hit.Normal[2])}
	}
	return js.ValueOf(result)
}

func main() {
	js.Global().Set("vxb2glb", js.FuncOf(vxb2glb))
	js.Global().Set("diffVxb", js.FuncOf(diffVxb))
	js.Global().Set("patchVxb", js.FuncOf(patchVxb))
	js.Global().Set("raycastVxb", js.FuncOf(raycastVxb))
	select {}
}
