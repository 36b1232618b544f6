package cpu

// execute decodes and runs a single fetched opcode, returning the number of
// CPU cycles it consumes. Opcodes are matched by mask/pattern against the
// AVR instruction set encoding table, most-specific pattern first, the same
// shape as the teacher's giant switch over decoded 6502 operators. EIJMP/
// EICALL are intentionally unsupported: the ATtiny1626's 8 KiW flash never
// needs the extended indirect jump a part with >128 KiB of flash would.
func (c *CPU) execute(op uint16) (int, error) {
	switch {
	case op == 0x0000: // NOP
		return 1, nil
	case op == 0x9588: // SLEEP
		c.Sleeping = true
		return 1, nil
	case op == 0x9598: // BREAK
		return 1, nil
	case op == 0x95A8: // WDR
		return 1, nil
	case op == 0x95C8: // LPM (implied R0 <- (Z))
		c.Regs.R[0] = c.Flash.ReadByte(c.Regs.Z())
		return 3, nil
	case op == 0x9409: // IJMP
		c.PC.Load(c.Regs.Z())
		return 2, nil
	case op == 0x9509: // ICALL
		c.pushPC()
		c.PC.Load(c.Regs.Z())
		return 3, nil
	case op == 0x9508: // RET
		c.PC.Load(c.popPC())
		return 4, nil
	case op == 0x9518: // RETI
		c.PC.Load(c.popPC())
		c.SREG.I = true
		return retiCycles, nil

	case op&0xFF8F == 0x9408: // BSET s
		c.setSREGBit((op>>4)&0x07, true)
		return 1, nil
	case op&0xFF8F == 0x9488: // BCLR s
		c.setSREGBit((op>>4)&0x07, false)
		return 1, nil

	case op&0xFC00 == 0x1C00: // ADC Rd,Rr
		return c.opAdd(op, true)
	case op&0xFC00 == 0x0C00: // ADD Rd,Rr
		return c.opAdd(op, false)
	case op&0xFF00 == 0x9600: // ADIW
		return c.opADIW(op)
	case op&0xFC00 == 0x1800: // SUB Rd,Rr
		return c.opSub(op, false)
	case op&0xFC00 == 0x0800: // SBC Rd,Rr
		return c.opSub(op, true)
	case op&0xF000 == 0x5000: // SUBI Rd,K
		return c.opSubImm(op, false)
	case op&0xF000 == 0x4000: // SBCI Rd,K
		return c.opSubImm(op, true)
	case op&0xFF00 == 0x9700: // SBIW
		return c.opSBIW(op)
	case op&0xFC00 == 0x2000: // AND Rd,Rr
		return c.opLogic(op, func(a, b uint8) uint8 { return a & b })
	case op&0xF000 == 0x7000: // ANDI Rd,K
		return c.opLogicImm(op, func(a, b uint8) uint8 { return a & b })
	case op&0xFC00 == 0x2800: // OR Rd,Rr
		return c.opLogic(op, func(a, b uint8) uint8 { return a | b })
	case op&0xF000 == 0x6000: // ORI Rd,K
		return c.opLogicImm(op, func(a, b uint8) uint8 { return a | b })
	case op&0xFC00 == 0x2400: // EOR Rd,Rr
		return c.opLogic(op, func(a, b uint8) uint8 { return a ^ b })
	case op&0xFE0F == 0x9400: // COM Rd
		return c.opCOM(op)
	case op&0xFE0F == 0x9401: // NEG Rd
		return c.opNeg(op)
	case op&0xFE0F == 0x9403: // INC Rd
		return c.opIncDec(op, 1)
	case op&0xFE0F == 0x940A: // DEC Rd
		return c.opIncDec(op, -1)
	case op&0xFC00 == 0x1400: // CP Rd,Rr
		return c.opCompare(op, false)
	case op&0xFC00 == 0x0400: // CPC Rd,Rr
		return c.opCompare(op, true)
	case op&0xF000 == 0x3000: // CPI Rd,K
		return c.opCompareImm(op)
	case op&0xFC00 == 0x1000: // CPSE Rd,Rr
		return c.opCPSE(op)
	case op&0xFC00 == 0x9C00: // MUL Rd,Rr
		return c.opMUL(op)
	case op&0xFF00 == 0x0200: // MULS Rd,Rr
		return c.opMULS(op)
	case op&0xFF88 == 0x0300: // MULSU Rd,Rr
		return c.opMULSU(op)

	case op&0xFE08 == 0xF800: // BLD Rd,b
		return c.opBLD(op)
	case op&0xFE08 == 0xFA00: // BST Rd,b
		return c.opBST(op)
	case op&0xFF00 == 0x9800: // CBI A,b
		return c.opIOBit(op, false)
	case op&0xFF00 == 0x9A00: // SBI A,b
		return c.opIOBit(op, true)
	case op&0xFF00 == 0x9900: // SBIC A,b
		return c.opIOBitSkip(op, false)
	case op&0xFF00 == 0x9B00: // SBIS A,b
		return c.opIOBitSkip(op, true)
	case op&0xFE08 == 0xFC00: // SBRC Rd,b
		return c.opSBRx(op, false)
	case op&0xFE08 == 0xFE00: // SBRS Rd,b
		return c.opSBRx(op, true)
	case op&0xFE0F == 0x9406: // LSR Rd
		return c.opShift(op, shiftLSR)
	case op&0xFE0F == 0x9407: // ROR Rd
		return c.opShift(op, shiftROR)
	case op&0xFE0F == 0x9405: // ASR Rd
		return c.opShift(op, shiftASR)
	case op&0xFE0F == 0x9402: // SWAP Rd
		return c.opSwap(op)

	case op&0xF000 == 0xC000: // RJMP
		c.rjmp(op)
		return 2, nil
	case op&0xF000 == 0xD000: // RCALL
		c.pushPC()
		c.rjmp(op)
		return 3, nil
	case op&0xFE0E == 0x940C: // JMP
		addr := c.fetch32(op)
		c.PC.Load(uint16(addr))
		return 3, nil
	case op&0xFE0E == 0x940E: // CALL
		addr := c.fetch32(op)
		c.pushPC()
		c.PC.Load(uint16(addr))
		return 4, nil
	case op&0xFC00 == 0xF000: // BRBS s,k
		return c.opBranch(op, true)
	case op&0xFC00 == 0xF400: // BRBC s,k
		return c.opBranch(op, false)

	case op&0xFC00 == 0x2C00: // MOV Rd,Rr
		c.Regs.R[regD(op)] = c.Regs.R[regR(op)]
		return 1, nil
	case op&0xFF00 == 0x0100: // MOVW
		return c.opMOVW(op)
	case op&0xF000 == 0xE000: // LDI Rd,K
		c.Regs.R[16+int((op>>4)&0x0F)] = immK(op)
		return 1, nil
	case op&0xFE0F == 0x9000: // LDS Rd,k
		k := c.fetch()
		c.Regs.R[regD(op)] = c.Bus.Read(k)
		return 2, nil
	case op&0xFE0F == 0x9200: // STS k,Rr
		k := c.fetch()
		c.Bus.Write(k, c.Regs.R[regD(op)])
		return 2, nil
	case op&0xFE0F == 0x900C: // LD Rd,X
		return c.opLoadIndirect(op, ptrX, 0)
	case op&0xFE0F == 0x900D: // LD Rd,X+
		return c.opLoadIndirect(op, ptrX, 1)
	case op&0xFE0F == 0x900E: // LD Rd,-X
		return c.opLoadIndirect(op, ptrX, -1)
	case op&0xFE0F == 0x9009: // LD Rd,Y+
		return c.opLoadIndirect(op, ptrY, 1)
	case op&0xFE0F == 0x900A: // LD Rd,-Y
		return c.opLoadIndirect(op, ptrY, -1)
	case op&0xFE0F == 0x9001: // LD Rd,Z+
		return c.opLoadIndirect(op, ptrZ, 1)
	case op&0xFE0F == 0x9002: // LD Rd,-Z
		return c.opLoadIndirect(op, ptrZ, -1)
	case op&0xD208 == 0x8008: // LDD Rd,Y+q (q=0 is plain LD Rd,Y)
		return c.opLoadDisp(op, ptrY)
	case op&0xD208 == 0x8000: // LDD Rd,Z+q (q=0 is plain LD Rd,Z)
		return c.opLoadDisp(op, ptrZ)
	case op&0xFE0F == 0x920C: // ST X,Rr
		return c.opStoreIndirect(op, ptrX, 0)
	case op&0xFE0F == 0x920D: // ST X+,Rr
		return c.opStoreIndirect(op, ptrX, 1)
	case op&0xFE0F == 0x920E: // ST -X,Rr
		return c.opStoreIndirect(op, ptrX, -1)
	case op&0xFE0F == 0x9209: // ST Y+,Rr
		return c.opStoreIndirect(op, ptrY, 1)
	case op&0xFE0F == 0x920A: // ST -Y,Rr
		return c.opStoreIndirect(op, ptrY, -1)
	case op&0xFE0F == 0x9201: // ST Z+,Rr
		return c.opStoreIndirect(op, ptrZ, 1)
	case op&0xFE0F == 0x9202: // ST -Z,Rr
		return c.opStoreIndirect(op, ptrZ, -1)
	case op&0xD208 == 0x8208: // STD Y+q,Rr (q=0 is plain ST Y,Rr)
		return c.opStoreDisp(op, ptrY)
	case op&0xD208 == 0x8200: // STD Z+q,Rr (q=0 is plain ST Z,Rr)
		return c.opStoreDisp(op, ptrZ)
	case op&0xF800 == 0xB000: // IN Rd,A
		c.Regs.R[regD(op)] = c.Bus.Read(ioAddr(op))
		return 1, nil
	case op&0xF800 == 0xB800: // OUT A,Rr
		c.Bus.Write(ioAddr(op), c.Regs.R[regD(op)])
		return 1, nil
	case op&0xFE0F == 0x920F: // PUSH Rd
		c.push8(c.Regs.R[regD(op)])
		return 2, nil
	case op&0xFE0F == 0x900F: // POP Rd
		c.Regs.R[regD(op)] = c.pop8()
		return 2, nil
	}
	return 0, errIllegal
}
