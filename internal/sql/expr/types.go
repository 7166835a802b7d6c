package expr

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind enumerates the variants of the value model. Absent attributes and
// explicit nulls share KindNull.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Entity is the capability the query core requires from host records. The
// boolean result reports whether the attribute exists at all; a present
// attribute holding Null() is treated exactly like an absent one.
type Entity interface {
	Attribute(name string) (Value, bool)
}

// Value is a tagged union over string, number, null and entity references.
// The zero Value is null.
type Value struct {
	kind   Kind
	str    string
	num    decimal.Decimal
	entity Entity
}

// Null returns the "no value" state.
func Null() Value {
	return Value{}
}

// String constructs a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number constructs a numeric value.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// Int constructs a numeric value from an integer.
func Int(i int64) Value {
	return Number(decimal.NewFromInt(i))
}

// EntityRef wraps a whole entity, as produced by '*' projections.
func EntityRef(e Entity) Value {
	if e == nil {
		return Null()
	}
	return Value{kind: KindEntity, entity: e}
}

// ParseNumber parses the textual form of a numeric literal.
func ParseNumber(text string) (Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, fmt.Errorf("expr: invalid number %q", text)
	}
	return Number(d), nil
}

// Kind reports the variant held by the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the "no value" state.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Decimal returns the numeric payload and whether the value is a number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

// Entity returns the referenced entity and whether the value is an entity.
func (v Value) Entity() (Entity, bool) {
	return v.entity, v.kind == KindEntity
}

// Equal implements equality for '=' comparisons and group keys. Null never
// equals anything here; grouping handles null keys separately.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num.Equal(other.num)
	case KindEntity:
		return v.entity == other.entity
	default:
		return false
	}
}

// Compare orders two values of the same comparable kind. ok is false when the
// kinds differ or are not ordered.
func (v Value) Compare(other Value) (cmp int, ok bool) {
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.str, other.str), true
	case KindNumber:
		return v.num.Cmp(other.num), true
	default:
		return 0, false
	}
}

// Key renders a collision-free grouping key. All nulls share one key.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return "s" + strconv.Itoa(len(v.str)) + ":" + v.str
	case KindNumber:
		// normalise so that 4 and 4.0 land in the same group
		return "n:" + v.num.String()
	case KindEntity:
		return entityKey(v.entity)
	default:
		return "null"
	}
}

// entityKey keys pointer entities by address and other entities by type and
// value, matching the == used by Equal.
func entityKey(e Entity) string {
	if rv := reflect.ValueOf(e); rv.Kind() == reflect.Ptr {
		return fmt.Sprintf("e:%T:%x", e, rv.Pointer())
	}
	return fmt.Sprintf("e:%T:%#v", e, e)
}

// Native converts the value into a plain Go value: string, decimal.Decimal,
// the Entity itself, or nil.
func (v Value) Native() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindEntity:
		return v.entity
	default:
		return nil
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindEntity:
		if s, ok := v.entity.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v.entity)
	default:
		return "NULL"
	}
}

// FromNative maps host Go values onto the value model. Unknown types fall
// back to their fmt representation.
func FromNative(value interface{}) Value {
	switch v := value.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return String(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return unsigned(uint64(v))
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		return unsigned(v)
	case float32:
		return fromFloat(float64(v), 32)
	case float64:
		return fromFloat(v, 64)
	case decimal.Decimal:
		return Number(v)
	case bool:
		return String(strconv.FormatBool(v))
	case Entity:
		return EntityRef(v)
	case fmt.Stringer:
		return String(v.String())
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

func unsigned(v uint64) Value {
	return Number(decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0))
}

// fromFloat converts a host float. NaN and the infinities have no decimal form
// and are kept as their text.
func fromFloat(v float64, bitSize int) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return String(strconv.FormatFloat(v, 'g', -1, bitSize))
	}
	if bitSize == 32 {
		return Number(decimal.NewFromFloat32(float32(v)))
	}
	return Number(decimal.NewFromFloat(v))
}
