package symcache

import "debug/dwarf"

// DW_LANG values, DWARF 5 section 7.12
const (
	langC89         = 0x0001
	langC           = 0x0002
	langAda83       = 0x0003
	langCPlusPlus   = 0x0004
	langFortran77   = 0x0007
	langFortran90   = 0x0008
	langC99         = 0x000c
	langAda95       = 0x000d
	langD           = 0x0013
	langObjC        = 0x0010
	langObjCPlus    = 0x0011
	langGo          = 0x0016
	langCPlusPlus03 = 0x0019
	langCPlusPlus11 = 0x001a
	langRust        = 0x001c
	langC11         = 0x001d
	langSwift       = 0x001e
	langCPlusPlus14 = 0x0021
	langZig         = 0x0027
	langC17         = 0x002c
	langCPlusPlus17 = 0x002a
	langCPlusPlus20 = 0x002b
)

// LanguageUnknown labels functions whose compile unit names no language
// this package recognizes.
const LanguageUnknown = "unknown"

// languageName maps DW_AT_language to a short label.
func languageName(lang int64) string {
	switch lang {
	case langC89, langC, langC99, langC11, langC17:
		return "c"
	case langCPlusPlus, langCPlusPlus03, langCPlusPlus11, langCPlusPlus14, langCPlusPlus17, langCPlusPlus20:
		return "cpp"
	case langObjC:
		return "objc"
	case langObjCPlus:
		return "objcpp"
	case langGo:
		return "go"
	case langRust:
		return "rust"
	case langSwift:
		return "swift"
	case langD:
		return "d"
	case langZig:
		return "zig"
	case langAda83, langAda95:
		return "ada"
	case langFortran77, langFortran90:
		return "fortran"
	}
	return LanguageUnknown
}

func unitLanguage(cu *dwarf.Entry) string {
	if v, ok := cu.Val(dwarf.AttrLanguage).(int64); ok {
		return languageName(v)
	}
	return LanguageUnknown
}
