// Package tlv decodes the Tag-Length-Value structures found on eHealth
// smart cards: fixed-order schema records with single-byte tags and lengths,
// and general BER-TLV mapped onto Go structs with struct tags.
package tlv

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// STRUCT-TAG MAPPING:
// Standard ISO 7816-4 files (EF.DIR, PKCS#15 directory files) are genuine
// BER-TLV with multi-byte tags and nested templates. Unmarshal maps them onto
// Go structs with `tlv:"4F"` tags:
//
//   - []byte fields receive the raw value,
//   - string fields receive the value as text,
//   - struct fields (or pointers to struct) are decoded recursively,
//   - slice fields collect every occurrence of their tag,
//   - a []bertlv.TLV field tagged `tlv:",unknown"` receives the leftovers.

// Unmarshal parses raw BER-TLV data and maps it into a target Go struct.
func Unmarshal(data []byte, target interface{}) error {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromPackets(packets, target)
}

// UnmarshalFromPackets maps pre-decoded packets onto the struct pointed to by target.
func UnmarshalFromPackets(packets []bertlv.TLV, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct, got %s", v.Kind())
	}
	t := v.Type()

	consumed := make([]bool, len(packets))
	var unknown reflect.Value

	for i := 0; i < v.NumField(); i++ {
		config := t.Field(i).Tag.Get("tlv")
		if config == "" {
			continue
		}
		if config == ",unknown" {
			unknown = v.Field(i)
			continue
		}

		tagHex := strings.ToUpper(strings.Split(config, ",")[0])
		for idx, packet := range packets {
			if strings.ToUpper(packet.Tag) != tagHex {
				continue
			}
			if err := assign(packet, v.Field(i)); err != nil {
				return fmt.Errorf("tag %s: %w", tagHex, err)
			}
			consumed[idx] = true
		}
	}

	if unknown.IsValid() && unknown.CanSet() && unknown.Type() == reflect.TypeOf([]bertlv.TLV{}) {
		var leftovers []bertlv.TLV
		for idx, packet := range packets {
			if !consumed[idx] {
				leftovers = append(leftovers, packet)
			}
		}
		if len(leftovers) > 0 {
			unknown.Set(reflect.ValueOf(leftovers))
		}
	}
	return nil
}

// assign appends to repeated fields and decodes in place otherwise.
func assign(packet bertlv.TLV, field reflect.Value) error {
	if field.Kind() == reflect.Slice && !isByteSlice(field) {
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeInto(packet, elem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, elem))
		return nil
	}
	return decodeInto(packet, field)
}

func decodeInto(packet bertlv.TLV, field reflect.Value) error {
	switch {
	case isByteSlice(field):
		field.SetBytes(packetValue(packet))
	case field.Kind() == reflect.String:
		field.SetString(string(packet.Value))
	case field.Kind() == reflect.Struct:
		return structFromPacket(packet, field.Addr())
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return structFromPacket(packet, field)
	}
	return nil
}

func structFromPacket(packet bertlv.TLV, ptr reflect.Value) error {
	if len(packet.TLVs) > 0 {
		return UnmarshalFromPackets(packet.TLVs, ptr.Interface())
	}
	return Unmarshal(packet.Value, ptr.Interface())
}

// packetValue returns the value bytes, re-encoding children of constructed tags.
func packetValue(p bertlv.TLV) []byte {
	if len(p.TLVs) > 0 {
		if enc, err := bertlv.Encode(p.TLVs); err == nil {
			return enc
		}
	}
	return p.Value
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}
