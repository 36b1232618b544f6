package cpu

import "fmt"

// Disassemble renders a best-effort mnemonic for op, used only by the
// runner's --debug trace; it is not a full disassembler (no flash-relative
// label resolution, no multi-word operand fetch for JMP/CALL/LDS/STS) since
// the trace only needs to name what executed, not reproduce source text.
func Disassemble(op uint16) string {
	switch {
	case op == 0x0000:
		return "NOP"
	case op == 0x9588:
		return "SLEEP"
	case op == 0x9598:
		return "BREAK"
	case op == 0x95A8:
		return "WDR"
	case op == 0x95C8:
		return "LPM"
	case op == 0x9409:
		return "IJMP"
	case op == 0x9509:
		return "ICALL"
	case op == 0x9508:
		return "RET"
	case op == 0x9518:
		return "RETI"
	case op&0xFF8F == 0x9408:
		return fmt.Sprintf("BSET %d", (op>>4)&0x07)
	case op&0xFF8F == 0x9488:
		return fmt.Sprintf("BCLR %d", (op>>4)&0x07)
	case op&0xFC00 == 0x1C00:
		return regPair("ADC", op)
	case op&0xFC00 == 0x0C00:
		return regPair("ADD", op)
	case op&0xFF00 == 0x9600:
		return "ADIW"
	case op&0xFC00 == 0x1800:
		return regPair("SUB", op)
	case op&0xFC00 == 0x0800:
		return regPair("SBC", op)
	case op&0xF000 == 0x5000:
		return regImm("SUBI", op)
	case op&0xF000 == 0x4000:
		return regImm("SBCI", op)
	case op&0xFF00 == 0x9700:
		return "SBIW"
	case op&0xFC00 == 0x2000:
		return regPair("AND", op)
	case op&0xF000 == 0x7000:
		return regImm("ANDI", op)
	case op&0xFC00 == 0x2800:
		return regPair("OR", op)
	case op&0xF000 == 0x6000:
		return regImm("ORI", op)
	case op&0xFC00 == 0x2400:
		return regPair("EOR", op)
	case op&0xFE0F == 0x9400:
		return regSingle("COM", op)
	case op&0xFE0F == 0x9401:
		return regSingle("NEG", op)
	case op&0xFE0F == 0x9403:
		return regSingle("INC", op)
	case op&0xFE0F == 0x940A:
		return regSingle("DEC", op)
	case op&0xFC00 == 0x1400:
		return regPair("CP", op)
	case op&0xFC00 == 0x0400:
		return regPair("CPC", op)
	case op&0xF000 == 0x3000:
		return regImm("CPI", op)
	case op&0xFC00 == 0x1000:
		return regPair("CPSE", op)
	case op&0xFC00 == 0x9C00:
		return regPair("MUL", op)
	case op&0xFF00 == 0x0200:
		return regPair("MULS", op)
	case op&0xFF88 == 0x0300:
		return regPair("MULSU", op)
	case op&0xFE08 == 0xF800:
		return "BLD"
	case op&0xFE08 == 0xFA00:
		return "BST"
	case op&0xFF00 == 0x9800:
		return "CBI"
	case op&0xFF00 == 0x9A00:
		return "SBI"
	case op&0xFF00 == 0x9900:
		return "SBIC"
	case op&0xFF00 == 0x9B00:
		return "SBIS"
	case op&0xFE08 == 0xFC00:
		return "SBRC"
	case op&0xFE08 == 0xFE00:
		return "SBRS"
	case op&0xFE0F == 0x9406:
		return regSingle("LSR", op)
	case op&0xFE0F == 0x9407:
		return regSingle("ROR", op)
	case op&0xFE0F == 0x9405:
		return regSingle("ASR", op)
	case op&0xFE0F == 0x9402:
		return regSingle("SWAP", op)
	case op&0xF000 == 0xC000:
		return "RJMP"
	case op&0xF000 == 0xD000:
		return "RCALL"
	case op&0xFE0E == 0x940C:
		return "JMP"
	case op&0xFE0E == 0x940E:
		return "CALL"
	case op&0xFC00 == 0xF000:
		return "BRBS"
	case op&0xFC00 == 0xF400:
		return "BRBC"
	case op&0xFC00 == 0x2C00:
		return regPair("MOV", op)
	case op&0xFF00 == 0x0100:
		return "MOVW"
	case op&0xF000 == 0xE000:
		return fmt.Sprintf("LDI R%d,%#02x", 16+int((op>>4)&0x0F), immK(op))
	case op&0xFE0F == 0x9000:
		return fmt.Sprintf("LDS R%d,...", regD(op))
	case op&0xFE0F == 0x9200:
		return fmt.Sprintf("STS ...,R%d", regD(op))
	case op&0xFE0F == 0x900C, op&0xFE0F == 0x900D, op&0xFE0F == 0x900E,
		op&0xFE0F == 0x9009, op&0xFE0F == 0x900A, op&0xFE0F == 0x9001, op&0xFE0F == 0x9002:
		return regSingle("LD", op)
	case op&0xD208 == 0x8008, op&0xD208 == 0x8000:
		return regSingle("LDD", op)
	case op&0xFE0F == 0x920C, op&0xFE0F == 0x920D, op&0xFE0F == 0x920E,
		op&0xFE0F == 0x9209, op&0xFE0F == 0x920A, op&0xFE0F == 0x9201, op&0xFE0F == 0x9202:
		return regSingle("ST", op)
	case op&0xD208 == 0x8208, op&0xD208 == 0x8200:
		return regSingle("STD", op)
	case op&0xF800 == 0xB000:
		return fmt.Sprintf("IN R%d,%#03x", regD(op), ioAddr(op))
	case op&0xF800 == 0xB800:
		return fmt.Sprintf("OUT %#03x,R%d", ioAddr(op), regD(op))
	case op&0xFE0F == 0x920F:
		return regSingle("PUSH", op)
	case op&0xFE0F == 0x900F:
		return regSingle("POP", op)
	}
	return fmt.Sprintf("ILLEGAL %#04x", op)
}

func regPair(mnem string, op uint16) string {
	return fmt.Sprintf("%s R%d,R%d", mnem, regD(op), regR(op))
}

func regImm(mnem string, op uint16) string {
	return fmt.Sprintf("%s R%d,%#02x", mnem, 16+int((op>>4)&0x0F), immK(op))
}

func regSingle(mnem string, op uint16) string {
	return fmt.Sprintf("%s R%d", mnem, regD(op))
}
