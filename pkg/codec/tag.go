package codec

// Tag is the one-byte discriminant that starts every record
type Tag byte

// Record tags
const (
	TagContainer      Tag = '('
	TagContainerClose Tag = ')'
	TagString         Tag = 's'
	TagU8             Tag = 'y'
	TagI16            Tag = 'n'
	TagU16            Tag = 'q'
	TagI32            Tag = 'i'
	TagU32            Tag = 'u'
	TagI64            Tag = 'x'
	TagU64            Tag = 't'
	TagF32            Tag = 'f'
	TagF64            Tag = 'd'
)

// Key identifies a record within its enclosing container
type Key uint16

// HeaderSize is the size of the tag and key that precede every payload
const HeaderSize = 3

// LenAuto asks AppendString to find the length by scanning for a zero byte
const LenAuto uint16 = 0

// MaxStringLen is the largest string payload a record can carry
const MaxStringLen = 1<<16 - 1

// TypeSize returns the fixed payload size of tag. Strings have no fixed size
// and report false, as do unknown tags.
func TypeSize(tag Tag) (int, bool) {
	switch tag {
	case TagContainer, TagContainerClose:
		return 0, true
	case TagU8:
		return 1, true
	case TagI16, TagU16:
		return 2, true
	case TagI32, TagU32, TagF32:
		return 4, true
	case TagI64, TagU64, TagF64:
		return 8, true
	}
	return 0, false
}

// Valid reports whether tag is one of the known record tags
func (t Tag) Valid() bool {
	if t == TagString {
		return true
	}
	_, ok := TypeSize(t)
	return ok
}

// String returns the name the dump tool prints for tag
func (t Tag) String() string {
	switch t {
	case TagContainer:
		return "container"
	case TagContainerClose:
		return "close"
	case TagString:
		return "string"
	case TagU8:
		return "byte"
	case TagI16:
		return "i16"
	case TagU16:
		return "u16"
	case TagI32:
		return "i32"
	case TagU32:
		return "u32"
	case TagI64:
		return "i64"
	case TagU64:
		return "u64"
	case TagF32:
		return "f32"
	case TagF64:
		return "f64"
	}
	return "unknown"
}
