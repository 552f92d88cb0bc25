package api

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/mesh"
	"github.com/voxelsplace/voxbuf/raycast"
	"github.com/voxelsplace/voxbuf/voxel"
)

// Custom vertex attributes carried next to the standard glTF ones.
const (
	AttrMaterial = "_MATERIAL" // metallic, roughness, reflectance, face id
	AttrEmission = "_EMISSION" // emission / 255
)

type Options struct {
	Mesh mesh.Options
	// Generator is written to the glTF asset block.
	Generator string
}

// Document meshes buf into a glTF document with a single mesh node. An empty
// buffer yields a document with an empty scene.
func Document(buf *voxel.Buffer, opts Options) *gltf.Document {
	m := mesh.Build(buf, opts.Mesh)

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxbuf"
	if opts.Generator != "" {
		doc.Asset.Generator = opts.Generator
	}
	if m.Quads() > 0 {
		addMesh(doc, m)
	}
	return doc
}

// BufferToGLB returns Document(buf, opts) as binary glTF.
func BufferToGLB(buf *voxel.Buffer, opts Options) ([]byte, error) {
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(Document(buf, opts)); err != nil {
		return nil, fmt.Errorf("encode glb: %w", err)
	}
	return out.Bytes(), nil
}

func addMesh(doc *gltf.Document, m *mesh.Mesh) {
	n := len(m.Vertices)
	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	colors := make([][4]uint8, n)
	materials := make([][4]uint8, n)
	emission := make([]float32, n)
	for i, v := range m.Vertices {
		positions[i] = v.Position
		nrm := mesh.Faces[v.Material[3]].Normal
		normals[i] = [3]float32{float32(nrm[0]), float32(nrm[1]), float32(nrm[2])}
		colors[i] = [4]uint8{v.Color[0], v.Color[1], v.Color[2], 255}
		materials[i] = v.Material
		emission[i] = float32(v.Color[3]) / 255
	}

	var indices int
	if ib := m.IndexBuffer(); ib.Wide() {
		indices = modeler.WriteIndices(doc, ib.U32)
	} else {
		indices = modeler.WriteIndices(doc, ib.U16)
	}

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, normals),
			gltf.COLOR_0:  modeler.WriteColor(doc, colors),
			AttrMaterial:  modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, materials),
			AttrEmission:  modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, emission),
		},
		Indices:  gltf.Index(indices),
		Material: gltf.Index(0),
	}

	doc.Materials = []*gltf.Material{{
		Name:      "voxel",
		AlphaMode: gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}}
	doc.Meshes = []*gltf.Mesh{{Name: "VoxelMesh", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "voxels", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
}

// VXBToGLB takes .vxb bytes and returns .glb bytes.
func VXBToGLB(vxb []byte, opts Options) ([]byte, error) {
	buf, err := codec.Decode(vxb)
	if err != nil {
		return nil, err
	}
	return BufferToGLB(buf, opts)
}

// RaycastBytes decodes a .vxb blob and casts ray through it.
func RaycastBytes(vxb []byte, ray raycast.Ray) (raycast.Hit, bool, error) {
	buf, err := codec.Decode(vxb)
	if err != nil {
		return raycast.Hit{}, false, err
	}
	hit, ok := raycast.Cast(buf, ray)
	return hit, ok, nil
}

// DiffBytes returns the .vxd edit stream turning the volume a into b.
func DiffBytes(a, b []byte) ([]byte, error) {
	from, err := codec.Decode(a)
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	to, err := codec.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode target: %w", err)
	}
	return codec.EncodeEdits(voxel.Diff(from, to)), nil
}

// PatchBytes applies a .vxd edit stream to a .vxb blob and re-encodes it.
func PatchBytes(vxb, vxd []byte, opts codec.Options) ([]byte, error) {
	buf, err := codec.Decode(vxb)
	if err != nil {
		return nil, err
	}
	edits, err := codec.DecodeEdits(vxd)
	if err != nil {
		return nil, err
	}
	voxel.Apply(buf, edits)
	return codec.Encode(buf, opts)
}
