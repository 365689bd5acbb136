package wire

import (
	"fmt"
	"strings"
	"time"
)

// The device clocks the bit loop straight from the CPU: at 8 MHz one cycle is
// 125ns, a 0 bit is 3 cycles high and 7 low, a 1 bit is 5 high and 5 low.
// Both branches of the loop take the same number of cycles, so the bit value
// only changes when the pin drops.

// Opcode is an AVR instruction used by the bit loop.
type Opcode uint8

const (
	OpCLI Opcode = iota
	OpSEI
	OpCLR
	OpLDI
	OpDEC
	OpLD // ld Rd, X+
	OpLSL
	OpOUT
	OpBRCS
	OpBREQ
	OpBRMI
	OpNOP
	OpRJMP
)

var opNames = [...]string{
	OpCLI:  "cli",
	OpSEI:  "sei",
	OpCLR:  "clr",
	OpLDI:  "ldi",
	OpDEC:  "dec",
	OpLD:   "ld",
	OpLSL:  "lsl",
	OpOUT:  "out",
	OpBRCS: "brcs",
	OpBREQ: "breq",
	OpBRMI: "brmi",
	OpNOP:  "nop",
	OpRJMP: "rjmp",
}

// String returns the mnemonic.
func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// Cycles returns the cost of the instruction. Branches cost one more cycle
// when taken.
func (op Opcode) Cycles(taken bool) int {
	switch op {
	case OpLD, OpRJMP:
		return 2
	case OpBRCS, OpBREQ, OpBRMI:
		if taken {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// Instruction is one line of the routine. Label names the instruction itself;
// Target is the label a branch jumps to.
type Instruction struct {
	Op     Opcode
	Rd     uint8
	K      uint8
	Target string
	Label  string
}

// PinMask is the PORTB value that drives the data pin (PB2) high.
const PinMask = 1 << 2

// PortB is the I/O address of PORTB on the ATtiny85.
const PortB = 0x18

// Routine is the transmit loop as it runs on the device. r18 holds the low
// port value, r20 the high port value, r19 counts bytes, r21 holds the byte
// being shifted out and r22 counts bits.
var Routine = []Instruction{
	{Op: OpCLI, Label: "setup"},
	{Op: OpCLR, Rd: 18},
	{Op: OpLDI, Rd: 19, K: FrameSize},
	{Op: OpLDI, Rd: 20, K: PinMask},

	{Op: OpDEC, Rd: 19, Label: "start"},
	{Op: OpBRMI, Target: "end"},
	{Op: OpLD, Rd: 21},
	{Op: OpLDI, Rd: 22, K: 8},

	{Op: OpOUT, Rd: 20, Label: "bitloop"}, // high
	{Op: OpLSL, Rd: 21},
	{Op: OpBRCS, Target: "sendhigh"},
	{Op: OpOUT, Rd: 18}, // early low for a 0 bit

	{Op: OpDEC, Rd: 22, Label: "sendhigh"},
	{Op: OpOUT, Rd: 18}, // shared low
	{Op: OpBREQ, Target: "start"},
	{Op: OpNOP},
	{Op: OpRJMP, Target: "bitloop"},

	{Op: OpSEI, Label: "end"},
}

// RoutineAsm is Asm(Routine). It is a constant because avr.AsmFull only takes
// constant strings; a test keeps the two in sync.
const RoutineAsm = `wire_setup:
	cli
	clr {lo}
	ldi {count}, 3
	ldi {hi}, 4
wire_start:
	dec {count}
	brmi wire_end
	ld {byte}, {data}+
	ldi {bits}, 8
wire_bitloop:
	out 0x18, {hi}
	lsl {byte}
	brcs wire_sendhigh
	out 0x18, {lo}
wire_sendhigh:
	dec {bits}
	out 0x18, {lo}
	breq wire_start
	nop
	rjmp wire_bitloop
wire_end:
	sei
`

// Edge is a change of the data pin level.
type Edge struct {
	Cycle int
	High  bool
}

// Trace is the result of simulating the routine.
type Trace struct {
	ClockHz uint32
	Edges   []Edge
	// Cycles is the total runtime of the routine.
	Cycles int
	// MaskedFrom and MaskedTo bound the cycles during which interrupts were
	// disabled, [MaskedFrom, MaskedTo).
	MaskedFrom, MaskedTo int
}

// Duration converts a cycle count to time at the trace's clock.
func (t Trace) Duration(cycles int) time.Duration {
	return time.Duration(int64(cycles) * int64(time.Second) / int64(t.ClockHz))
}

// Masked reports whether interrupts were disabled at the given cycle.
func (t Trace) Masked(cycle int) bool {
	return cycle >= t.MaskedFrom && cycle < t.MaskedTo
}

// Pulses converts the edges into pulses. The last pulse's low time runs until
// the routine returns.
func (t Trace) Pulses() []Pulse {
	var pulses []Pulse
	for i := 0; i+1 < len(t.Edges); i += 2 {
		rise, fall := t.Edges[i], t.Edges[i+1]
		end := t.Cycles
		if i+2 < len(t.Edges) {
			end = t.Edges[i+2].Cycle
		}
		pulses = append(pulses, Pulse{
			High: t.Duration(fall.Cycle - rise.Cycle),
			Low:  t.Duration(end - fall.Cycle),
		})
	}
	return pulses
}

// maxCycles stops a broken routine from spinning forever.
const maxCycles = 10000

// Simulate runs the routine over frame on an AVR core clocked at clockHz and
// records every pin change with its cycle stamp.
func Simulate(routine []Instruction, frame [FrameSize]byte, clockHz uint32) (Trace, error) {
	labels := make(map[string]int)
	for i, in := range routine {
		if in.Label != "" {
			labels[in.Label] = i
		}
	}

	var (
		regs    [32]uint8
		x       int
		c, z, n bool
		pin     bool
		pc      int
		cycle   int
	)

	trace := Trace{ClockHz: clockHz, MaskedFrom: -1}

	for pc < len(routine) {
		if cycle > maxCycles {
			return trace, fmt.Errorf("routine did not finish within %d cycles", maxCycles)
		}

		in := routine[pc]
		next := pc + 1
		taken := false

		branch := func(cond bool) error {
			if !cond {
				return nil
			}
			target, ok := labels[in.Target]
			if !ok {
				return fmt.Errorf("pc %d: unknown label %q", pc, in.Target)
			}
			next = target
			taken = true
			return nil
		}

		var err error
		switch in.Op {
		case OpCLI:
			trace.MaskedFrom = cycle
		case OpSEI:
			trace.MaskedTo = cycle
		case OpCLR:
			regs[in.Rd] = 0
			z, n = true, false
		case OpLDI:
			regs[in.Rd] = in.K
		case OpDEC:
			regs[in.Rd]--
			z = regs[in.Rd] == 0
			n = regs[in.Rd]&0x80 != 0
		case OpLD:
			if x >= len(frame) {
				return trace, fmt.Errorf("pc %d: read past the frame", pc)
			}
			regs[in.Rd] = frame[x]
			x++
		case OpLSL:
			c = regs[in.Rd]&0x80 != 0
			regs[in.Rd] <<= 1
			z = regs[in.Rd] == 0
			n = regs[in.Rd]&0x80 != 0
		case OpOUT:
			if level := regs[in.Rd]&PinMask != 0; level != pin {
				pin = level
				trace.Edges = append(trace.Edges, Edge{Cycle: cycle, High: level})
			}
		case OpBRCS:
			err = branch(c)
		case OpBREQ:
			err = branch(z)
		case OpBRMI:
			err = branch(n)
		case OpNOP:
		case OpRJMP:
			err = branch(true)
		default:
			err = fmt.Errorf("pc %d: unknown opcode %v", pc, in.Op)
		}
		if err != nil {
			return trace, err
		}

		cycle += in.Op.Cycles(taken)
		pc = next
	}

	trace.Cycles = cycle
	if trace.MaskedFrom < 0 || trace.MaskedTo <= trace.MaskedFrom {
		return trace, fmt.Errorf("routine does not mask interrupts")
	}

	return trace, nil
}

// asmRegs names the registers of the routine as inline assembly operands.
var asmRegs = map[uint8]string{
	18: "lo",
	19: "count",
	20: "hi",
	21: "byte",
	22: "bits",
}

// Asm renders a routine as AVR inline assembly for avr.AsmFull. Registers
// become the operands {lo}, {count}, {hi}, {byte} and {bits}, the frame is
// read through the pointer operand {data}, and labels get a "wire_" prefix.
func Asm(routine []Instruction) (string, error) {
	var b strings.Builder
	for pc, in := range routine {
		if in.Label != "" {
			fmt.Fprintf(&b, "wire_%s:\n", in.Label)
		}

		reg := func() (string, error) {
			name, ok := asmRegs[in.Rd]
			if !ok {
				return "", fmt.Errorf("pc %d: register r%d has no operand", pc, in.Rd)
			}
			return "{" + name + "}", nil
		}

		var line string
		switch in.Op {
		case OpCLI, OpSEI, OpNOP:
			line = in.Op.String()
		case OpCLR, OpDEC, OpLSL:
			r, err := reg()
			if err != nil {
				return "", err
			}
			line = fmt.Sprintf("%s %s", in.Op, r)
		case OpLDI:
			r, err := reg()
			if err != nil {
				return "", err
			}
			line = fmt.Sprintf("ldi %s, %d", r, in.K)
		case OpLD:
			r, err := reg()
			if err != nil {
				return "", err
			}
			line = fmt.Sprintf("ld %s, {data}+", r)
		case OpOUT:
			r, err := reg()
			if err != nil {
				return "", err
			}
			line = fmt.Sprintf("out %#x, %s", PortB, r)
		case OpBRCS, OpBREQ, OpBRMI, OpRJMP:
			line = fmt.Sprintf("%s wire_%s", in.Op, in.Target)
		default:
			return "", fmt.Errorf("pc %d: unknown opcode %v", pc, in.Op)
		}

		b.WriteString("\t" + line + "\n")
	}
	return b.String(), nil
}
