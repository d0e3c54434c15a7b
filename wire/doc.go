// Package wire implements the schema-independent framing of libnop records.
//
// A record is an entry count followed by that many (field id, value) pairs:
//
//	Table := entry_count:uvarint (Entry)*
//	Entry := field_id:uvarint Value
//	Value := tag:u8 Payload
//
// The tag byte carries a framing class in bits 7-5 and a kind code in bits 4-0:
//
//	class 0: 1 byte payload      (bool, int8, uint8)
//	class 1: 2 byte payload      (int16, uint16)
//	class 2: 4 byte payload      (int32, uint32, float32)
//	class 3: 8 byte payload      (int64, uint64, float64)
//	class 4: 16 byte payload     (uuid)
//	class 5: length:uvarint + N  (string, bytes, sequence, table, msgpack)
//
// Because the payload size depends only on the class, a reader that does not
// recognize a field id, or even a kind code, can still step over the value.
// That property is what keeps old readers working against data written by
// newer schemas, so nothing in this package ever consults a schema.
//
// Fixed-width payloads are little-endian (see package endian).
//
// # Length-prefixed values
//
// Variable-size values are written in place and their length is patched in
// afterwards, so nested values can be appended without intermediate buffers:
//
//	buf, mark := wire.BeginLengthPrefixed(buf, wire.KindString)
//	buf = append(buf, "hello"...)
//	buf = wire.EndLengthPrefixed(buf, mark)
//
// # Reading
//
// Readers consume a Source, which is an io.Reader that can also read single
// bytes. NewSource adapts any io.Reader without read-ahead, so decoding one
// record never consumes bytes that belong to the next one.
package wire
