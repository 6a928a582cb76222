package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// DescribeTree decodes data as BER-TLV and renders one line per node,
// indenting constructed children. Primitive values are shown in hex with
// their printable ASCII form.
func DescribeTree(data []byte) (string, error) {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return "", fmt.Errorf("bertlv decode failed: %w", err)
	}

	var lines []string
	appendTree(&lines, packets, 1)
	return strings.Join(lines, "\n"), nil
}

func appendTree(lines *[]string, packets []bertlv.TLV, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, p := range packets {
		if len(p.TLVs) > 0 {
			*lines = append(*lines, fmt.Sprintf("%s+ %s (%d nodes)", indent, strings.ToUpper(p.Tag), len(p.TLVs)))
			appendTree(lines, p.TLVs, depth+1)
			continue
		}
		*lines = append(*lines, fmt.Sprintf("%s- %s: %s", indent, strings.ToUpper(p.Tag), formatByteValue(p.Value, "ascii")))
	}
}

// WriteStructFields inspects a struct and writes its populated fields to the strings.Builder.
// Byte slices are rendered per their `fmt` struct tag, strings verbatim and
// leftover []bertlv.TLV as unknown tags. Lines are joined with newlines
// without a trailing one; a newline separates them from earlier content.
func WriteStructFields(sb *strings.Builder, prefix string, s interface{}) {
	val := reflect.ValueOf(s)

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}

	typ := val.Type()
	var lines []string

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		switch {
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8:
			if field.Len() > 0 {
				lines = append(lines, fmt.Sprintf("    - %s.%s: %s", prefix, fieldLabel(fieldType),
					formatByteValue(field.Bytes(), fieldType.Tag.Get("fmt"))))
			}
		case field.Kind() == reflect.String:
			if field.Len() > 0 {
				lines = append(lines, fmt.Sprintf("    - %s.%s: %s", prefix, fieldLabel(fieldType), field.String()))
			}
		case field.Type() == reflect.TypeOf([]bertlv.TLV{}):
			for _, t := range field.Interface().([]bertlv.TLV) {
				lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %s: %X", prefix, strings.ToUpper(t.Tag), t.Value))
			}
		}
	}

	if len(lines) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(lines, "\n"))
	}
}

func fieldLabel(f reflect.StructField) string {
	tag := strings.Split(f.Tag.Get("tlv"), ",")[0]
	if tag == "" {
		return f.Name
	}
	return fmt.Sprintf("%s (%s)", f.Name, tag)
}

func formatByteValue(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, MakeSafeASCII(data))
	case "int":
		var integer int
		for _, b := range data {
			integer = (integer << 8) | int(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, integer)
	default:
		return fmt.Sprintf("%X", data)
	}
}

// MakeSafeASCII replaces every byte outside the printable ASCII range with a dot.
func MakeSafeASCII(data []byte) string {
	b := make([]byte, len(data))
	for i, c := range data {
		if c >= 32 && c <= 126 {
			b[i] = c
		} else {
			b[i] = '.'
		}
	}
	return string(b)
}
