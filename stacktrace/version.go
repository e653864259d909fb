package stacktrace

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/stabletrace/errors"
	"github.com/wippyai/stabletrace/wire"
)

const canaryMin = 1

// devMetadata is the build metadata that marks a development build.
const devMetadata = "dev"

// CanaryHash is the optional build fingerprint of a canary build.
type CanaryHash struct {
	value string
	set   bool
}

// Canary returns a present canary hash.
func Canary(hash string) CanaryHash {
	return CanaryHash{value: hash, set: true}
}

// Get returns the hash and whether it is present.
func (c CanaryHash) Get() (string, bool) {
	return c.value, c.set
}

// IsSet reports whether the hash is present.
func (c CanaryHash) IsSet() bool {
	return c.set
}

// EncodedSize is 1 when absent and 1 + padded length otherwise.
func (c CanaryHash) EncodedSize() int {
	if !c.set {
		return 1
	}
	return wire.NewOtherString(c.value, canaryMin).EncodedSize()
}

// EncodeInto writes a single zero byte when absent.
func (c CanaryHash) EncodeInto(buf []byte) int {
	if !c.set {
		buf[0] = 0
		return 1
	}
	return wire.NewOtherString(c.value, canaryMin).EncodeInto(buf)
}

// Version identifies the build that produced a trace.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	CanaryHash CanaryHash
	DevBuild   bool
}

// EncodedSize sums the fields in wire order.
func (v Version) EncodedSize() int {
	return wire.Uvarint(v.Major).EncodedSize() +
		wire.Uvarint(v.Minor).EncodedSize() +
		wire.Uvarint(v.Patch).EncodedSize() +
		v.CanaryHash.EncodedSize() +
		wire.Bool(v.DevBuild).EncodedSize()
}

// EncodeInto writes major, minor, patch, canary hash and dev flag in that order.
func (v Version) EncodeInto(buf []byte) int {
	i := 0
	i += wire.Uvarint(v.Major).EncodeInto(buf[i:])
	i += wire.Uvarint(v.Minor).EncodeInto(buf[i:])
	i += wire.Uvarint(v.Patch).EncodeInto(buf[i:])
	i += v.CanaryHash.EncodeInto(buf[i:])
	i += wire.Bool(v.DevBuild).EncodeInto(buf[i:])
	return i
}

// String renders MAJOR.MINOR.PATCH[-CANARY][+dev].
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.Major, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Minor, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Patch, 10))
	if hash, ok := v.CanaryHash.Get(); ok {
		b.WriteByte('-')
		b.WriteString(hash)
	}
	if v.DevBuild {
		b.WriteByte('+')
		b.WriteString(devMetadata)
	}
	return b.String()
}

// ParseVersion parses MAJOR.MINOR.PATCH[-CANARY][+dev]. The pre-release part
// becomes the canary hash; "dev" is the only accepted build metadata.
func ParseVersion(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path("version").
			Value(s).
			Cause(err).
			Detail("invalid version string").
			Build()
	}

	v := Version{
		Major: sv.Major(),
		Minor: sv.Minor(),
		Patch: sv.Patch(),
	}
	if pre := sv.Prerelease(); pre != "" {
		v.CanaryHash = Canary(pre)
	}
	switch meta := sv.Metadata(); meta {
	case "":
	case devMetadata:
		v.DevBuild = true
	default:
		return Version{}, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path("version").
			Value(s).
			Detail("unknown build metadata %q", meta).
			Build()
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}
