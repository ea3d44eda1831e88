package jsonb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"yunion.io/x/jsonutils"
)

var (
	// ErrMisplacedKey is reported when Key is called outside an object or twice
	// in a row.
	ErrMisplacedKey = errors.New("jsonb: misplaced key")
	// ErrMisplacedValue is reported when a value, array or object is written
	// where the grammar does not allow one (for example an object member
	// without a key, or a second root value).
	ErrMisplacedValue = errors.New("jsonb: misplaced value")
	// ErrUnbalanced is reported when EndArray/EndObject does not match the
	// innermost open container.
	ErrUnbalanced = errors.New("jsonb: unbalanced end")
	// ErrIncomplete is reported by ToJSON when containers remain open or
	// nothing was written.
	ErrIncomplete = errors.New("jsonb: incomplete document")
	// ErrDuplicateKey is reported when an object receives the same key twice.
	ErrDuplicateKey = errors.New("jsonb: duplicate key")
	// ErrUnsupportedValue is reported for values that have no JSON form
	// (functions, channels, complex numbers, NaN and infinities).
	ErrUnsupportedValue = errors.New("jsonb: unsupported value")
	// ErrInvalidOutput is reported by ToJSON when the serialised document does
	// not parse back as JSON.
	ErrInvalidOutput = errors.New("jsonb: invalid output")
)

type frame struct {
	array  *jsonutils.JSONArray
	dict   *jsonutils.JSONDict
	key    string
	hasKey bool
	keys   map[string]struct{}
}

// Builder writes a JSON document one token at a time. Calls chain; the first
// grammar violation sticks and is returned by Err and ToJSON, later calls are
// ignored.
type Builder struct {
	root  jsonutils.JSONObject
	stack []*frame
	err   error
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Err returns the first error recorded by the builder.
func (b *Builder) Err() error {
	if b == nil {
		return errors.New("jsonb: builder is nil")
	}
	return b.err
}

// Array opens a JSON array.
func (b *Builder) Array() *Builder {
	arr := jsonutils.NewArray()
	if b.attach(arr) {
		b.stack = append(b.stack, &frame{array: arr})
	}
	return b
}

// EndArray closes the innermost array.
func (b *Builder) EndArray() *Builder {
	return b.end(func(f *frame) bool { return f.array != nil })
}

// Object opens a JSON object.
func (b *Builder) Object() *Builder {
	dict := jsonutils.NewDict()
	if b.attach(dict) {
		b.stack = append(b.stack, &frame{dict: dict, keys: make(map[string]struct{})})
	}
	return b
}

// EndObject closes the innermost object. A dangling key is an error.
func (b *Builder) EndObject() *Builder {
	return b.end(func(f *frame) bool { return f.dict != nil && !f.hasKey })
}

// Key names the next member of the innermost object.
func (b *Builder) Key(key string) *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil || top.dict == nil || top.hasKey {
		b.err = fmt.Errorf("%w: %q", ErrMisplacedKey, key)
		return b
	}
	if _, exists := top.keys[key]; exists {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		return b
	}
	top.keys[key] = struct{}{}
	top.key = key
	top.hasKey = true
	return b
}

// Value writes a scalar (or a pre-built jsonutils value) in the current
// position.
func (b *Builder) Value(value any) *Builder {
	if b.err != nil {
		return b
	}
	obj, err := toJSONObject(value)
	if err != nil {
		b.err = err
		return b
	}
	b.attach(obj)
	return b
}

// Field is shorthand for Key(key).Value(value).
func (b *Builder) Field(key string, value any) *Builder {
	return b.Key(key).Value(value)
}

// ToJSON returns the compact document with HTML-sensitive characters escaped
// so the output can be inlined in a <script> element.
func (b *Builder) ToJSON() (string, error) {
	if b == nil {
		return "", errors.New("jsonb: builder is nil")
	}
	if b.err != nil {
		return "", b.err
	}
	if b.root == nil || len(b.stack) > 0 {
		return "", ErrIncomplete
	}
	raw := escapeControl(b.root.String())
	if !json.Valid([]byte(raw)) {
		return "", ErrInvalidOutput
	}
	var buf bytes.Buffer
	json.HTMLEscape(&buf, []byte(raw))
	return buf.String(), nil
}

// escapeControl rewrites raw control characters as \u escapes. Compact
// jsonutils output only carries them inside string literals.
func escapeControl(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r < 0x20 }) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 {
			fmt.Fprintf(&b, `\u%04x`, c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// String renders the document, returning an empty string on error.
func (b *Builder) String() string {
	out, err := b.ToJSON()
	if err != nil {
		return ""
	}
	return out
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) attach(obj jsonutils.JSONObject) bool {
	if b.err != nil {
		return false
	}
	top := b.top()
	switch {
	case top == nil:
		if b.root != nil {
			b.err = fmt.Errorf("%w: document already has a root", ErrMisplacedValue)
			return false
		}
		b.root = obj
	case top.array != nil:
		top.array.Add(obj)
	case top.dict != nil:
		if !top.hasKey {
			b.err = fmt.Errorf("%w: object member requires a key", ErrMisplacedValue)
			return false
		}
		top.dict.Set(top.key, obj)
		top.key = ""
		top.hasKey = false
	}
	return true
}

func (b *Builder) end(matches func(*frame) bool) *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil || !matches(top) {
		b.err = ErrUnbalanced
		return b
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

func toJSONObject(value any) (jsonutils.JSONObject, error) {
	switch v := value.(type) {
	case nil:
		return jsonutils.JSONNull, nil
	case jsonutils.JSONObject:
		return v, nil
	case string:
		return jsonutils.NewString(v), nil
	case bool:
		return jsonutils.NewBool(v), nil
	case int:
		return jsonutils.NewInt(int64(v)), nil
	case int8:
		return jsonutils.NewInt(int64(v)), nil
	case int16:
		return jsonutils.NewInt(int64(v)), nil
	case int32:
		return jsonutils.NewInt(int64(v)), nil
	case int64:
		return jsonutils.NewInt(v), nil
	case uint:
		return unsignedObject(uint64(v))
	case uint64:
		return unsignedObject(v)
	case uint8:
		return jsonutils.NewInt(int64(v)), nil
	case uint16:
		return jsonutils.NewInt(int64(v)), nil
	case uint32:
		return jsonutils.NewInt(int64(v)), nil
	case float32:
		return floatObject(float64(v))
	case float64:
		return floatObject(v)
	case fmt.Stringer:
		return jsonutils.NewString(v.String()), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, rv.Kind())
	case reflect.String:
		return jsonutils.NewString(rv.String()), nil
	}
	return jsonutils.Marshal(value), nil
}

func unsignedObject(u uint64) (jsonutils.JSONObject, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
	}
	return jsonutils.NewInt(int64(u)), nil
}

func floatObject(f float64) (jsonutils.JSONObject, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, strings.TrimSpace(fmt.Sprint(f)))
	}
	return jsonutils.NewFloat(f), nil
}
