// Package wire implements the primitives of the stack trace wire format.
//
// Every encodable value implements Encoder, a two-phase contract: EncodedSize
// reports the exact number of bytes the value occupies and EncodeInto writes
// exactly that many bytes at the start of the given slice. Composite values
// sum and concatenate their fields in a fixed order, so a whole record is
// allocated once and encoded by slicing:
//
//	buf := wire.Marshal(trace)
//
// The primitives are:
//
//	Uvarint      LEB128 unsigned varint (7 bits per byte, low group first)
//	Byte         a u8, encoded as a varint (one byte for values below 0x80)
//	Bool         one byte, 0 or 1
//	OtherString  length byte + content, right-padded with spaces to a minimum width
//
// Reader decodes the same primitives from a byte slice, tracking the offset
// for error reporting. EncodeBase64URL and DecodeBase64URL implement the
// unpadded URL-safe text transport.
package wire
