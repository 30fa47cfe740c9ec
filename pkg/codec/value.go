package codec

import (
	"encoding/binary"
	"math"
)

// Value is a decoded or to-be-encoded record payload. The concrete type
// selects the record tag.
type Value interface {
	Tag() Tag
}

// fixedValue is a Value with a fixed-size payload
type fixedValue interface {
	Value
	put(b []byte)
}

type (
	ContainerOpen  struct{}
	ContainerClose struct{}
	// String holds raw bytes; it may contain zero bytes.
	String []byte
	U8     uint8
	I16    int16
	U16    uint16
	I32    int32
	U32    uint32
	I64    int64
	U64    uint64
	F32    float32
	F64    float64
)

func (ContainerOpen) Tag() Tag  { return TagContainer }
func (ContainerClose) Tag() Tag { return TagContainerClose }
func (String) Tag() Tag         { return TagString }
func (U8) Tag() Tag             { return TagU8 }
func (I16) Tag() Tag            { return TagI16 }
func (U16) Tag() Tag            { return TagU16 }
func (I32) Tag() Tag            { return TagI32 }
func (U32) Tag() Tag            { return TagU32 }
func (I64) Tag() Tag            { return TagI64 }
func (U64) Tag() Tag            { return TagU64 }
func (F32) Tag() Tag            { return TagF32 }
func (F64) Tag() Tag            { return TagF64 }

func (ContainerOpen) put([]byte)    {}
func (ContainerClose) put([]byte)   {}
func (v U8) put(b []byte)           { b[0] = byte(v) }
func (v I16) put(b []byte)          { order.PutUint16(b, uint16(v)) }
func (v U16) put(b []byte)          { order.PutUint16(b, uint16(v)) }
func (v I32) put(b []byte)          { order.PutUint32(b, uint32(v)) }
func (v U32) put(b []byte)          { order.PutUint32(b, uint32(v)) }
func (v I64) put(b []byte)          { order.PutUint64(b, uint64(v)) }
func (v U64) put(b []byte)          { order.PutUint64(b, uint64(v)) }
func (v F32) put(b []byte)          { order.PutUint32(b, math.Float32bits(float32(v))) }
func (v F64) put(b []byte)          { order.PutUint64(b, math.Float64bits(float64(v))) }

// order is the byte order of keys, lengths and payloads. The format does not
// normalize it, so streams only round trip between hosts of equal endianness.
var order = binary.NativeEndian

// decodeFixed builds the Value for a fixed-size payload
func decodeFixed(tag Tag, b []byte) Value {
	switch tag {
	case TagContainer:
		return ContainerOpen{}
	case TagContainerClose:
		return ContainerClose{}
	case TagU8:
		return U8(b[0])
	case TagI16:
		return I16(order.Uint16(b))
	case TagU16:
		return U16(order.Uint16(b))
	case TagI32:
		return I32(order.Uint32(b))
	case TagU32:
		return U32(order.Uint32(b))
	case TagI64:
		return I64(order.Uint64(b))
	case TagU64:
		return U64(order.Uint64(b))
	case TagF32:
		return F32(math.Float32frombits(order.Uint32(b)))
	case TagF64:
		return F64(math.Float64frombits(order.Uint64(b)))
	}
	return nil
}
