package mesh

import "math"

// Vertex is one quad corner.
type Vertex struct {
	Position [3]float32
	// Material is metallic, roughness, reflectance and the face id (see Faces).
	Material [4]uint8
	// Color is the ambient-occlusion shaded RGB plus emission, unorm encoded.
	Color [4]uint8
}

// Mesh is an indexed triangle list made of quads: 4 vertices and 6 indices each.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func (m *Mesh) Quads() int {
	return len(m.Vertices) / 4
}

// IndexBuffer holds indices in the narrowest width that fits the vertex count.
// Exactly one of U16 and U32 is set for a non-empty mesh.
type IndexBuffer struct {
	U16 []uint16
	U32 []uint32
}

func (ib IndexBuffer) Wide() bool { return ib.U32 != nil }

func (ib IndexBuffer) Len() int {
	if ib.U32 != nil {
		return len(ib.U32)
	}
	return len(ib.U16)
}

// IndexBuffer narrows indices to 16 bits unless the mesh has more than 65535 vertices.
func (m *Mesh) IndexBuffer() IndexBuffer {
	if len(m.Vertices) > math.MaxUint16 {
		return IndexBuffer{U32: m.Indices}
	}
	out := make([]uint16, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = uint16(idx)
	}
	return IndexBuffer{U16: out}
}

func (m *Mesh) addQuad(corners [4][3]int32, material [4]uint8, colors [4][4]uint8) {
	base := uint32(len(m.Vertices))
	for i, c := range corners {
		m.Vertices = append(m.Vertices, Vertex{
			Position: [3]float32{float32(c[0]), float32(c[1]), float32(c[2])},
			Material: material,
			Color:    colors[i],
		})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// append concatenates o onto m, rebasing o's indices.
func (m *Mesh) append(o *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
}
