package asset

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// componentsPerElement is the number of float components per accessor element.
var componentsPerElement = map[gltf.AccessorType]int{
	gltf.AccessorScalar: 1,
	gltf.AccessorVec2:   2,
	gltf.AccessorVec3:   3,
	gltf.AccessorVec4:   4,
	gltf.AccessorMat4:   16,
}

// readFloats returns the components of accessor idx as float32, tightly
// packed. Float accessors are read as is and normalized integer accessors
// are denormalized. Sparse substitutions are applied; an accessor without a
// buffer view starts from zeros.
func readFloats(doc *gltf.Document, idx int) ([]float32, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, errors.Wrapf(ErrAccessorIndex, "accessor %d", idx)
	}
	acr := doc.Accessors[idx]
	comps, ok := componentsPerElement[acr.Type]
	if !ok {
		return nil, 0, errors.Wrapf(ErrAccessorType, "accessor %d: type %v", idx, acr.Type)
	}
	conv, err := componentReader(acr)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "accessor %d", idx)
	}
	if err := checkAccessorViews(doc, acr); err != nil {
		return nil, 0, errors.Wrapf(err, "accessor %d", idx)
	}

	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, 0, errors.Wrapf(ErrTruncatedData, "accessor %d: %v", idx, err)
	}
	out := make([]float32, 0, int(acr.Count)*comps)
	if data == nil {
		return out[:cap(out)], comps, nil
	}
	out = appendComponents(out, reflect.ValueOf(data), conv)
	return out, comps, nil
}

// componentReader picks the conversion from one stored component to float32.
func componentReader(acr *gltf.Accessor) (func(reflect.Value) float32, error) {
	if acr.ComponentType == gltf.ComponentFloat {
		return func(v reflect.Value) float32 { return float32(v.Float()) }, nil
	}
	if !acr.Normalized {
		return nil, errors.Wrapf(ErrAccessorType, "component type %v is not normalized", acr.ComponentType)
	}
	switch acr.ComponentType {
	case gltf.ComponentByte:
		return func(v reflect.Value) float32 { return gltf.DenormalizeByte(int8(v.Int())) }, nil
	case gltf.ComponentUbyte:
		return func(v reflect.Value) float32 { return gltf.DenormalizeUbyte(uint8(v.Uint())) }, nil
	case gltf.ComponentShort:
		return func(v reflect.Value) float32 { return gltf.DenormalizeShort(int16(v.Int())) }, nil
	case gltf.ComponentUshort:
		return func(v reflect.Value) float32 { return gltf.DenormalizeUshort(uint16(v.Uint())) }, nil
	}
	return nil, errors.Wrapf(ErrAccessorType, "normalized component type %v", acr.ComponentType)
}

// checkAccessorViews rejects view references modeler would index out of range.
// modeler looks up the sparse values stride by the values byte offset.
func checkAccessorViews(doc *gltf.Document, acr *gltf.Accessor) error {
	views := len(doc.BufferViews)
	if v, ok := index(acr.BufferView); ok {
		if v >= views {
			return errors.Wrapf(ErrAccessorIndex, "buffer view %d", v)
		}
		if acr.ByteOffset > doc.BufferViews[v].ByteLength {
			return errors.Wrapf(ErrTruncatedData, "byte offset %d past view length %d", acr.ByteOffset, doc.BufferViews[v].ByteLength)
		}
	}
	if sp := acr.Sparse; sp != nil {
		if int(sp.Indices.BufferView) >= views || int(sp.Values.BufferView) >= views || int(sp.Values.ByteOffset) >= views {
			return errors.Wrapf(ErrAccessorIndex, "sparse buffer views %d/%d", sp.Indices.BufferView, sp.Values.BufferView)
		}
		if sp.Count > acr.Count {
			return errors.Wrapf(ErrTruncatedData, "sparse count %d exceeds count %d", sp.Count, acr.Count)
		}
		if sp.Indices.ByteOffset > doc.BufferViews[sp.Indices.BufferView].ByteLength ||
			sp.Values.ByteOffset > doc.BufferViews[sp.Values.BufferView].ByteLength {
			return errors.Wrap(ErrTruncatedData, "sparse byte offset past view length")
		}
		indices, err := modeler.ReadIndices(doc, &gltf.Accessor{
			BufferView:    gltf.Index(sp.Indices.BufferView),
			ByteOffset:    sp.Indices.ByteOffset,
			ComponentType: sp.Indices.ComponentType,
			Count:         sp.Count,
			Type:          gltf.AccessorScalar,
		}, nil)
		if err != nil {
			return errors.Wrapf(ErrTruncatedData, "sparse indices: %v", err)
		}
		for _, i := range indices {
			if i >= acr.Count {
				return errors.Wrapf(ErrAccessorIndex, "sparse index %d of %d elements", i, acr.Count)
			}
		}
	}
	return nil
}

// appendComponents flattens scalars, vectors and matrices in memory order.
func appendComponents(out []float32, v reflect.Value, conv func(reflect.Value) float32) []float32 {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			out = appendComponents(out, v.Index(i), conv)
		}
		return out
	}
	return append(out, conv(v))
}
