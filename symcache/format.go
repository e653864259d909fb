package symcache

import (
	"bytes"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/stabletrace/errors"
)

var (
	// ErrCorrupt matches Open errors for bytes that are not a valid symcache.
	ErrCorrupt = &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidData, Offset: -1}

	// ErrUnsupportedFormat matches Open errors for symcaches written in a
	// format version this package does not read.
	ErrUnsupportedFormat = &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindUnsupportedVersion, Offset: -1}
)

// Magic starts every serialized symcache.
var Magic = []byte("STSC")

// FormatVersion is the layout version written after Magic.
const FormatVersion byte = 1

const headerSize = 5

// maxDecodedSize caps the decompressed payload of a symcache.
const maxDecodedSize = 1 << 30

// noFile marks a missing file index.
const noFile = -1

// cacheData is the CBOR payload. Addresses are stabilized offsets.
type cacheData struct {
	Files     []string    `cbor:"1,keyasint"`
	Functions []function  `cbor:"2,keyasint"`
	Ranges    []funcRange `cbor:"3,keyasint"`
	Inlines   []inline    `cbor:"4,keyasint"`
	Lines     []lineRow   `cbor:"5,keyasint"`
}

// function is one subprogram. Its inlined call sites are
// Inlines[InlineStart:InlineEnd].
type function struct {
	_           struct{} `cbor:",toarray"`
	Name        string
	Linkage     string
	Language    string
	InlineStart int
	InlineEnd   int
}

// funcRange is one contiguous address range of a function. Ranges are
// sorted by Start and do not overlap.
type funcRange struct {
	_     struct{} `cbor:",toarray"`
	Start uint64
	End   uint64
	Func  int
}

// inline is one address range of an inlined call. Depth 1 is inlined
// directly into the function, depth 2 into a depth 1 inline, and so on.
type inline struct {
	_        struct{} `cbor:",toarray"`
	Start    uint64
	End      uint64
	Depth    int
	Name     string
	Linkage  string
	CallFile int
	CallLine int
}

// lineRow applies from Addr up to the next row. A row with File == noFile
// and Line == 0 ends a sequence.
type lineRow struct {
	_    struct{} `cbor:",toarray"`
	Addr uint64
	File int
	Line int
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("symcache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 27,
	}.DecMode()
	if err != nil {
		panic("symcache: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("symcache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		panic("symcache: zstd decoder initialization failed: " + err.Error())
	}
}

func (d *cacheData) marshal() ([]byte, error) {
	payload, err := encMode.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBuild, errors.KindInvalidData, err, "encode symcache")
	}
	out := make([]byte, 0, headerSize+len(payload)/4)
	out = append(out, Magic...)
	out = append(out, FormatVersion)
	return zstdEncoder.EncodeAll(payload, out), nil
}

func unmarshal(data []byte) (*cacheData, error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(Magic)], Magic) {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Format("symcache").
			Detail("missing symcache magic").
			Build()
	}
	if v := data[len(Magic)]; v != FormatVersion {
		return nil, errors.UnsupportedVersion(errors.PhaseParse, "symcache", uint64(v))
	}

	payload, err := zstdDecoder.DecodeAll(data[headerSize:], nil)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Format("symcache").
			Cause(err).
			Detail("decompress payload").
			Build()
	}

	var d cacheData
	if err := decMode.Unmarshal(payload, &d); err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
			Format("symcache").
			Cause(err).
			Detail("decode payload").
			Build()
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// validate checks the invariants Lookup relies on, so a corrupted or
// hand-made symcache fails in Open instead of panicking later.
func (d *cacheData) validate() error {
	bad := func(what string) error {
		err := errors.InvalidData(errors.PhaseParse, nil, what)
		err.Format = "symcache"
		return err
	}
	file := func(i int) bool { return i == noFile || (i >= 0 && i < len(d.Files)) }

	for _, f := range d.Functions {
		if f.InlineStart < 0 || f.InlineStart > f.InlineEnd || f.InlineEnd > len(d.Inlines) {
			return bad("function inline span out of range")
		}
	}
	for i, r := range d.Ranges {
		if r.Func < 0 || r.Func >= len(d.Functions) || r.End < r.Start {
			return bad("function range out of range")
		}
		if i > 0 && d.Ranges[i-1].End > r.Start {
			return bad("function ranges unsorted or overlapping")
		}
	}
	for _, in := range d.Inlines {
		if !file(in.CallFile) || in.End < in.Start || in.Depth < 1 {
			return bad("inline record out of range")
		}
	}
	if !sort.SliceIsSorted(d.Lines, func(i, j int) bool { return d.Lines[i].Addr < d.Lines[j].Addr }) {
		return bad("line table unsorted")
	}
	for _, l := range d.Lines {
		if !file(l.File) {
			return bad("line file out of range")
		}
	}
	return nil
}
