package vm

import "fmt"

// Mnemonic returns a short display name for the raw instruction word raw,
// for use by diagnostic and debugger output outside this package.
func Mnemonic(raw uint32) string {
	return word(raw).Mnemonic()
}

// Mnemonic returns a short display name for the instruction word w, for use
// by diagnostic and debugger output. It never affects execution; unknown
// encodings fall back to a hex label the same way an unrecognized opcode
// falls back to a fatal halt in the run loop.
func (w word) Mnemonic() string {
	switch w.opcode() {
	case 10:
		return "cmpli"
	case 11:
		return "cmpi"
	case 14:
		if w.ra() == 0 {
			return "li"
		}
		return "addi"
	case 15:
		return "addis"
	case 16:
		return "bc"
	case 17:
		return "sc"
	case 18:
		return "b"
	case 19:
		switch w.xo10() {
		case 16:
			return "bclr"
		}
	case 31:
		switch {
		case w.xo9() == 266 || w.xo10() == 266:
			return "add"
		case w.xo10() == 339:
			return "mfspr"
		case w.xo10() == 444:
			if w.rt() == w.rb() {
				return "mr"
			}
			return "or"
		case w.xo10() == 467:
			return "mtspr"
		case w.xo10() == 0:
			return "cmp"
		case w.xo10() == 32:
			return "cmpl"
		}
	case 32:
		return "lwz"
	case 36:
		return "stw"
	case 37:
		return "stwu"
	case 38:
		return "stb"
	}
	return fmt.Sprintf(".long 0x%08X", uint32(w))
}
