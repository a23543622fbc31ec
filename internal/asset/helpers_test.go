package asset

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/qmuntal/gltf"
)

// docBuilder assembles a glTF JSON document with one embedded buffer.
type docBuilder struct {
	buf       bytes.Buffer
	views     []map[string]any
	accessors []map[string]any
	root      map[string]any
}

func newDocBuilder() *docBuilder {
	return &docBuilder{root: map[string]any{"asset": map[string]any{"version": "2.0"}}}
}

// floats appends data as a float accessor of the given glTF type and returns its index.
func (b *docBuilder) floats(typ string, data ...float32) int {
	comps := map[string]int{"SCALAR": 1, "VEC3": 3, "VEC4": 4}[typ]
	return b.accessor(obj{
		"bufferView":    b.view(data),
		"componentType": 5126,
		"count":         len(data) / comps,
		"type":          typ,
	})
}

// view appends data, a slice of fixed-size values, to the buffer and returns
// its buffer view index.
func (b *docBuilder) view(data any) int {
	offset := b.buf.Len()
	if err := binary.Write(&b.buf, binary.LittleEndian, data); err != nil {
		panic(err)
	}
	b.views = append(b.views, obj{
		"buffer":     0,
		"byteOffset": offset,
		"byteLength": b.buf.Len() - offset,
	})
	return len(b.views) - 1
}

func (b *docBuilder) accessor(a obj) int {
	b.accessors = append(b.accessors, a)
	return len(b.accessors) - 1
}

func (b *docBuilder) set(key string, v any) *docBuilder {
	b.root[key] = v
	return b
}

func (b *docBuilder) decode(t *testing.T) *gltf.Document {
	t.Helper()
	if b.buf.Len() > 0 {
		b.root["buffers"] = []any{map[string]any{
			"byteLength": b.buf.Len(),
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.buf.Bytes()),
		}}
		b.root["bufferViews"] = b.views
		b.root["accessors"] = b.accessors
	}
	raw, err := json.Marshal(b.root)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(raw)).Decode(doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

type obj = map[string]any

// skinnedDoc is:
//
//	0 "armature" -> 1 "hip" -> 2 "spine" -> 3 "head"
//	                        -> 4 "leg"
//	5 "body" (mesh 0, two morph targets)
//
// Skin 0 lists joints in the order spine, hip, head, leg.
func skinnedDoc(b *docBuilder) *docBuilder {
	return b.set("scene", 0).
		set("scenes", []obj{{"nodes": []int{0, 5}}}).
		set("nodes", []obj{
			{"name": "armature", "children": []int{1}},
			{"name": "hip", "children": []int{2, 4}, "translation": []float32{0, 1, 0}},
			{"name": "spine", "children": []int{3}, "translation": []float32{0, 0.5, 0}},
			{"name": "head", "translation": []float32{0, 0.5, 0}},
			{"name": "leg", "translation": []float32{0, -1, 0}},
			{"name": "body", "mesh": 0, "skin": 0},
		}).
		set("meshes", []obj{{
			"weights": []float32{0.25, 0.5},
			"primitives": []obj{{
				"attributes": obj{},
				"targets":    []obj{{}, {}},
			}},
		}}).
		set("skins", []obj{{"joints": []int{2, 1, 3, 4}, "skeleton": 0}})
}
