package stacktrace

import (
	"github.com/wippyai/stabletrace/errors"
	"github.com/wippyai/stabletrace/wire"
)

// ErrUnsupportedVersion matches decode errors for unknown trace versions.
var ErrUnsupportedVersion = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnsupportedVersion, Offset: -1}

// DecodeString decodes the base64url text form of a trace.
func DecodeString(s string) (*Trace, error) {
	data, err := wire.DecodeBase64URL(s)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode decodes the binary form of a trace.
//
// Names of unrecognized systems and architectures, and canary hashes, are
// returned with their padding intact; trailing spaces may be padding or part
// of the original value.
//
// A known name sent in string form, such as a 5 byte "linux", decodes to the
// known value and re-encodes as its tag. Encoders never produce that form, so
// Decode followed by Encode is the identity only for canonical input.
func Decode(data []byte) (*Trace, error) {
	r := wire.NewReader(data)

	h, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}

	var addrs Addrs
	for r.Len() > 0 {
		v, err := r.ReadUvarint()
		if err != nil {
			return nil, at(err, "addrs")
		}
		addrs = append(addrs, v)
	}

	return &Trace{Header: h, Addrs: addrs}, nil
}

func decodeHeader(r *wire.Reader) (Header, error) {
	var h Header

	tv, err := r.ReadUvarint()
	if err != nil {
		return h, at(err, "header", "trace_version")
	}
	if tv != uint64(TraceVersion) {
		return h, errors.UnsupportedVersion(errors.PhaseDecode, "trace", tv)
	}
	h.TraceVersion = uint8(tv)

	osTag, err := r.ReadByte()
	if err != nil {
		return h, at(err, "header", "os")
	}
	if os, ok := osFromTag(osTag); ok {
		h.OS = os
	} else {
		name, err := r.ReadString(int(osTag))
		if err != nil {
			return h, at(err, "header", "os")
		}
		h.OS = OS(name)
	}

	archTag, err := r.ReadByte()
	if err != nil {
		return h, at(err, "header", "arch")
	}
	if arch, ok := archFromTag(archTag); ok {
		h.Arch = arch
	} else {
		name, err := r.ReadString(int(archTag))
		if err != nil {
			return h, at(err, "header", "arch")
		}
		h.Arch = Arch(name)
	}

	h.Version, err = decodeVersion(r)
	return h, err
}

func decodeVersion(r *wire.Reader) (Version, error) {
	var v Version
	var err error

	if v.Major, err = r.ReadUvarint(); err != nil {
		return v, at(err, "header", "version", "major")
	}
	if v.Minor, err = r.ReadUvarint(); err != nil {
		return v, at(err, "header", "version", "minor")
	}
	if v.Patch, err = r.ReadUvarint(); err != nil {
		return v, at(err, "header", "version", "patch")
	}

	n, err := r.ReadByte()
	if err != nil {
		return v, at(err, "header", "version", "canary_hash")
	}
	if n > 0 {
		hash, err := r.ReadString(int(n))
		if err != nil {
			return v, at(err, "header", "version", "canary_hash")
		}
		v.CanaryHash = Canary(hash)
	}

	if v.DevBuild, err = r.ReadBool(); err != nil {
		return v, at(err, "header", "version", "dev_build")
	}
	return v, nil
}

// at attaches the field path to a structured decode error.
func at(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = path
		e.Format = "trace"
	}
	return err
}
