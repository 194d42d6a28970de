package cpu

// addressMode identifies how an opcode's operand address is computed.
type addressMode uint8

const (
	modeImplied addressMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeRelative
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX
	modeIndirectY
)

// ioMode classifies an opcode's memory access pattern, which determines
// whether an indexed addressing mode issues a dummy read on a non-crossing
// page and whether a dummy write precedes the real one.
type ioMode uint8

const (
	ioNone ioMode = iota
	ioR
	ioW
	ioRMW
)

type opcodeName uint8

const (
	opInvalid opcodeName = iota
	opADC
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA

	// Unofficial opcodes.
	opDOP
	opTOP
	opAAC
	opASR
	opARR
	opATX
	opAXS
	opSLO
	opRLA
	opSRE
	opRRA
	opAAX
	opLAX
	opDCP
	opISC
	opSYA
	opSXA
	opXAA
	opAXA
	opLAR
	opXAS
)

type opcode struct {
	name opcodeName
	mode addressMode
	io   ioMode
}

// opcodeTable is the full 256-entry 6502 dispatch table, including the 21
// unofficial opcodes needed for compatibility with real cartridges. Entries
// left at the zero value (opInvalid) are the JAM/KIL family and any other
// byte with no defined behavior.
var opcodeTable = [256]opcode{
	0x00: {opBRK, modeImplied, ioNone},
	0x01: {opORA, modeIndirectX, ioR},
	0x03: {opSLO, modeIndirectX, ioRMW},
	0x04: {opDOP, modeZeroPage, ioR},
	0x05: {opORA, modeZeroPage, ioR},
	0x06: {opASL, modeZeroPage, ioRMW},
	0x07: {opSLO, modeZeroPage, ioRMW},
	0x08: {opPHP, modeImplied, ioNone},
	0x09: {opORA, modeImmediate, ioR},
	0x0A: {opASL, modeAccumulator, ioNone},
	0x0B: {opAAC, modeImmediate, ioR},
	0x0C: {opTOP, modeAbsolute, ioR},
	0x0D: {opORA, modeAbsolute, ioR},
	0x0E: {opASL, modeAbsolute, ioRMW},
	0x0F: {opSLO, modeAbsolute, ioRMW},

	0x10: {opBPL, modeRelative, ioNone},
	0x11: {opORA, modeIndirectY, ioR},
	0x13: {opSLO, modeIndirectY, ioRMW},
	0x14: {opDOP, modeZeroPageX, ioR},
	0x15: {opORA, modeZeroPageX, ioR},
	0x16: {opASL, modeZeroPageX, ioRMW},
	0x17: {opSLO, modeZeroPageX, ioRMW},
	0x18: {opCLC, modeImplied, ioNone},
	0x19: {opORA, modeAbsoluteY, ioR},
	0x1A: {opNOP, modeImplied, ioNone},
	0x1B: {opSLO, modeAbsoluteY, ioRMW},
	0x1C: {opTOP, modeAbsoluteX, ioR},
	0x1D: {opORA, modeAbsoluteX, ioR},
	0x1E: {opASL, modeAbsoluteX, ioRMW},
	0x1F: {opSLO, modeAbsoluteX, ioRMW},

	0x20: {opJSR, modeAbsolute, ioNone},
	0x21: {opAND, modeIndirectX, ioR},
	0x23: {opRLA, modeIndirectX, ioRMW},
	0x24: {opBIT, modeZeroPage, ioR},
	0x25: {opAND, modeZeroPage, ioR},
	0x26: {opROL, modeZeroPage, ioRMW},
	0x27: {opRLA, modeZeroPage, ioRMW},
	0x28: {opPLP, modeImplied, ioNone},
	0x29: {opAND, modeImmediate, ioR},
	0x2A: {opROL, modeAccumulator, ioNone},
	0x2B: {opAAC, modeImmediate, ioR},
	0x2C: {opBIT, modeAbsolute, ioR},
	0x2D: {opAND, modeAbsolute, ioR},
	0x2E: {opROL, modeAbsolute, ioRMW},
	0x2F: {opRLA, modeAbsolute, ioRMW},

	0x30: {opBMI, modeRelative, ioNone},
	0x31: {opAND, modeIndirectY, ioR},
	0x33: {opRLA, modeIndirectY, ioRMW},
	0x34: {opDOP, modeZeroPageX, ioR},
	0x35: {opAND, modeZeroPageX, ioR},
	0x36: {opROL, modeZeroPageX, ioRMW},
	0x37: {opRLA, modeZeroPageX, ioRMW},
	0x38: {opSEC, modeImplied, ioNone},
	0x39: {opAND, modeAbsoluteY, ioR},
	0x3A: {opNOP, modeImplied, ioNone},
	0x3B: {opRLA, modeAbsoluteY, ioRMW},
	0x3C: {opTOP, modeAbsoluteX, ioR},
	0x3D: {opAND, modeAbsoluteX, ioR},
	0x3E: {opROL, modeAbsoluteX, ioRMW},
	0x3F: {opRLA, modeAbsoluteX, ioRMW},

	0x40: {opRTI, modeImplied, ioNone},
	0x41: {opEOR, modeIndirectX, ioR},
	0x43: {opSRE, modeIndirectX, ioRMW},
	0x44: {opDOP, modeZeroPage, ioR},
	0x45: {opEOR, modeZeroPage, ioR},
	0x46: {opLSR, modeZeroPage, ioRMW},
	0x47: {opSRE, modeZeroPage, ioRMW},
	0x48: {opPHA, modeImplied, ioNone},
	0x49: {opEOR, modeImmediate, ioR},
	0x4A: {opLSR, modeAccumulator, ioNone},
	0x4B: {opASR, modeImmediate, ioR},
	0x4C: {opJMP, modeAbsolute, ioNone},
	0x4D: {opEOR, modeAbsolute, ioR},
	0x4E: {opLSR, modeAbsolute, ioRMW},
	0x4F: {opSRE, modeAbsolute, ioRMW},

	0x50: {opBVC, modeRelative, ioNone},
	0x51: {opEOR, modeIndirectY, ioR},
	0x53: {opSRE, modeIndirectY, ioRMW},
	0x54: {opDOP, modeZeroPageX, ioR},
	0x55: {opEOR, modeZeroPageX, ioR},
	0x56: {opLSR, modeZeroPageX, ioRMW},
	0x57: {opSRE, modeZeroPageX, ioRMW},
	0x58: {opCLI, modeImplied, ioNone},
	0x59: {opEOR, modeAbsoluteY, ioR},
	0x5A: {opNOP, modeImplied, ioNone},
	0x5B: {opSRE, modeAbsoluteY, ioRMW},
	0x5C: {opTOP, modeAbsoluteX, ioR},
	0x5D: {opEOR, modeAbsoluteX, ioR},
	0x5E: {opLSR, modeAbsoluteX, ioRMW},
	0x5F: {opSRE, modeAbsoluteX, ioRMW},

	0x60: {opRTS, modeImplied, ioNone},
	0x61: {opADC, modeIndirectX, ioR},
	0x63: {opRRA, modeIndirectX, ioRMW},
	0x64: {opDOP, modeZeroPage, ioR},
	0x65: {opADC, modeZeroPage, ioR},
	0x66: {opROR, modeZeroPage, ioRMW},
	0x67: {opRRA, modeZeroPage, ioRMW},
	0x68: {opPLA, modeImplied, ioNone},
	0x69: {opADC, modeImmediate, ioR},
	0x6A: {opROR, modeAccumulator, ioNone},
	0x6B: {opARR, modeImmediate, ioR},
	0x6C: {opJMP, modeIndirect, ioNone},
	0x6D: {opADC, modeAbsolute, ioR},
	0x6E: {opROR, modeAbsolute, ioRMW},
	0x6F: {opRRA, modeAbsolute, ioRMW},

	0x70: {opBVS, modeRelative, ioNone},
	0x71: {opADC, modeIndirectY, ioR},
	0x73: {opRRA, modeIndirectY, ioRMW},
	0x74: {opDOP, modeZeroPageX, ioR},
	0x75: {opADC, modeZeroPageX, ioR},
	0x76: {opROR, modeZeroPageX, ioRMW},
	0x77: {opRRA, modeZeroPageX, ioRMW},
	0x78: {opSEI, modeImplied, ioNone},
	0x79: {opADC, modeAbsoluteY, ioR},
	0x7A: {opNOP, modeImplied, ioNone},
	0x7B: {opRRA, modeAbsoluteY, ioRMW},
	0x7C: {opTOP, modeAbsoluteX, ioR},
	0x7D: {opADC, modeAbsoluteX, ioR},
	0x7E: {opROR, modeAbsoluteX, ioRMW},
	0x7F: {opRRA, modeAbsoluteX, ioRMW},

	0x80: {opDOP, modeImmediate, ioR},
	0x81: {opSTA, modeIndirectX, ioW},
	0x82: {opDOP, modeImmediate, ioR},
	0x83: {opAAX, modeIndirectX, ioW},
	0x84: {opSTY, modeZeroPage, ioW},
	0x85: {opSTA, modeZeroPage, ioW},
	0x86: {opSTX, modeZeroPage, ioW},
	0x87: {opAAX, modeZeroPage, ioW},
	0x88: {opDEY, modeImplied, ioNone},
	0x89: {opDOP, modeImmediate, ioR},
	0x8A: {opTXA, modeImplied, ioNone},
	0x8B: {opXAA, modeImmediate, ioR},
	0x8C: {opSTY, modeAbsolute, ioW},
	0x8D: {opSTA, modeAbsolute, ioW},
	0x8E: {opSTX, modeAbsolute, ioW},
	0x8F: {opAAX, modeAbsolute, ioW},

	0x90: {opBCC, modeRelative, ioNone},
	0x91: {opSTA, modeIndirectY, ioW},
	0x93: {opAXA, modeIndirectY, ioW},
	0x94: {opSTY, modeZeroPageX, ioW},
	0x95: {opSTA, modeZeroPageX, ioW},
	0x96: {opSTX, modeZeroPageY, ioW},
	0x97: {opAAX, modeZeroPageY, ioW},
	0x98: {opTYA, modeImplied, ioNone},
	0x99: {opSTA, modeAbsoluteY, ioW},
	0x9A: {opTXS, modeImplied, ioNone},
	0x9B: {opXAS, modeAbsoluteY, ioW},
	0x9C: {opSYA, modeAbsoluteX, ioW},
	0x9D: {opSTA, modeAbsoluteX, ioW},
	0x9E: {opSXA, modeAbsoluteY, ioW},
	0x9F: {opAXA, modeAbsoluteY, ioW},

	0xA0: {opLDY, modeImmediate, ioR},
	0xA1: {opLDA, modeIndirectX, ioR},
	0xA2: {opLDX, modeImmediate, ioR},
	0xA3: {opLAX, modeIndirectX, ioR},
	0xA4: {opLDY, modeZeroPage, ioR},
	0xA5: {opLDA, modeZeroPage, ioR},
	0xA6: {opLDX, modeZeroPage, ioR},
	0xA7: {opLAX, modeZeroPage, ioR},
	0xA8: {opTAY, modeImplied, ioNone},
	0xA9: {opLDA, modeImmediate, ioR},
	0xAA: {opTAX, modeImplied, ioNone},
	0xAB: {opATX, modeImmediate, ioR},
	0xAC: {opLDY, modeAbsolute, ioR},
	0xAD: {opLDA, modeAbsolute, ioR},
	0xAE: {opLDX, modeAbsolute, ioR},
	0xAF: {opLAX, modeAbsolute, ioR},

	0xB0: {opBCS, modeRelative, ioNone},
	0xB1: {opLDA, modeIndirectY, ioR},
	0xB3: {opLAX, modeIndirectY, ioR},
	0xB4: {opLDY, modeZeroPageX, ioR},
	0xB5: {opLDA, modeZeroPageX, ioR},
	0xB6: {opLDX, modeZeroPageY, ioR},
	0xB7: {opLAX, modeZeroPageY, ioR},
	0xB8: {opCLV, modeImplied, ioNone},
	0xB9: {opLDA, modeAbsoluteY, ioR},
	0xBA: {opTSX, modeImplied, ioNone},
	0xBB: {opLAR, modeAbsoluteY, ioR},
	0xBC: {opLDY, modeAbsoluteX, ioR},
	0xBD: {opLDA, modeAbsoluteX, ioR},
	0xBE: {opLDX, modeAbsoluteY, ioR},
	0xBF: {opLAX, modeAbsoluteY, ioR},

	0xC0: {opCPY, modeImmediate, ioR},
	0xC1: {opCMP, modeIndirectX, ioR},
	0xC2: {opDOP, modeImmediate, ioR},
	0xC3: {opDCP, modeIndirectX, ioRMW},
	0xC4: {opCPY, modeZeroPage, ioR},
	0xC5: {opCMP, modeZeroPage, ioR},
	0xC6: {opDEC, modeZeroPage, ioRMW},
	0xC7: {opDCP, modeZeroPage, ioRMW},
	0xC8: {opINY, modeImplied, ioNone},
	0xC9: {opCMP, modeImmediate, ioR},
	0xCA: {opDEX, modeImplied, ioNone},
	0xCB: {opAXS, modeImmediate, ioR},
	0xCC: {opCPY, modeAbsolute, ioR},
	0xCD: {opCMP, modeAbsolute, ioR},
	0xCE: {opDEC, modeAbsolute, ioRMW},
	0xCF: {opDCP, modeAbsolute, ioRMW},

	0xD0: {opBNE, modeRelative, ioNone},
	0xD1: {opCMP, modeIndirectY, ioR},
	0xD3: {opDCP, modeIndirectY, ioRMW},
	0xD4: {opDOP, modeZeroPageX, ioR},
	0xD5: {opCMP, modeZeroPageX, ioR},
	0xD6: {opDEC, modeZeroPageX, ioRMW},
	0xD7: {opDCP, modeZeroPageX, ioRMW},
	0xD8: {opCLD, modeImplied, ioNone},
	0xD9: {opCMP, modeAbsoluteY, ioR},
	0xDA: {opNOP, modeImplied, ioNone},
	0xDB: {opDCP, modeAbsoluteY, ioRMW},
	0xDC: {opTOP, modeAbsoluteX, ioR},
	0xDD: {opCMP, modeAbsoluteX, ioR},
	0xDE: {opDEC, modeAbsoluteX, ioRMW},
	0xDF: {opDCP, modeAbsoluteX, ioRMW},

	0xE0: {opCPX, modeImmediate, ioR},
	0xE1: {opSBC, modeIndirectX, ioR},
	0xE2: {opDOP, modeImmediate, ioR},
	0xE3: {opISC, modeIndirectX, ioRMW},
	0xE4: {opCPX, modeZeroPage, ioR},
	0xE5: {opSBC, modeZeroPage, ioR},
	0xE6: {opINC, modeZeroPage, ioRMW},
	0xE7: {opISC, modeZeroPage, ioRMW},
	0xE8: {opINX, modeImplied, ioNone},
	0xE9: {opSBC, modeImmediate, ioR},
	0xEA: {opNOP, modeImplied, ioNone},
	0xEB: {opSBC, modeImmediate, ioR},
	0xEC: {opCPX, modeAbsolute, ioR},
	0xED: {opSBC, modeAbsolute, ioR},
	0xEE: {opINC, modeAbsolute, ioRMW},
	0xEF: {opISC, modeAbsolute, ioRMW},

	0xF0: {opBEQ, modeRelative, ioNone},
	0xF1: {opSBC, modeIndirectY, ioR},
	0xF3: {opISC, modeIndirectY, ioRMW},
	0xF4: {opDOP, modeZeroPageX, ioR},
	0xF5: {opSBC, modeZeroPageX, ioR},
	0xF6: {opINC, modeZeroPageX, ioRMW},
	0xF7: {opISC, modeZeroPageX, ioRMW},
	0xF8: {opSED, modeImplied, ioNone},
	0xF9: {opSBC, modeAbsoluteY, ioR},
	0xFA: {opNOP, modeImplied, ioNone},
	0xFB: {opISC, modeAbsoluteY, ioRMW},
	0xFC: {opTOP, modeAbsoluteX, ioR},
	0xFD: {opSBC, modeAbsoluteX, ioR},
	0xFE: {opINC, modeAbsoluteX, ioRMW},
	0xFF: {opISC, modeAbsoluteX, ioRMW},
}
