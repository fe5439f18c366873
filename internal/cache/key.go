package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// KeyPrefix namespaces every catalog cache key.
const KeyPrefix = "cdox"

// KeySeparator joins serialized key segments before hashing.
const KeySeparator = "::"

// SerializeKey builds a stable string from an operation name and its arguments.
// Map keys and struct fields are emitted in a fixed order so equal inputs give equal keys.
func SerializeKey(method string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, a := range args {
		parts = append(parts, serializeValue(reflect.ValueOf(a)))
	}
	return strings.Join(parts, KeySeparator)
}

// HashKey returns "cdox_<method>_<sha256 of the serialized arguments>".
func HashKey(method string, args ...any) string {
	sum := sha256.Sum256([]byte(SerializeKey(method, args...)))
	return fmt.Sprintf("%s_%s_%s", KeyPrefix, method, hex.EncodeToString(sum[:]))
}

func serializeValue(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return serializeValue(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		fallthrough
	case reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = serializeValue(rv.Index(i))
		}
		return fmt.Sprintf("slice[%d]:{%s}", len(parts), strings.Join(parts, ","))
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		pairs := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			pairs = append(pairs, serializeValue(iter.Key())+"="+serializeValue(iter.Value()))
		}
		sort.Strings(pairs)
		return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
	case reflect.Struct:
		rt := rv.Type()
		parts := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if !rt.Field(i).IsExported() {
				continue
			}
			parts = append(parts, rt.Field(i).Name+":"+serializeValue(rv.Field(i)))
		}
		return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return fmt.Sprintf("%v", rv.Interface())
	}

	if rv.CanInterface() {
		if b, err := json.Marshal(rv.Interface()); err == nil {
			return "json:" + string(b)
		}
	}
	return "type:" + rv.Type().String()
}
