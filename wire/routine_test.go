package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clock8MHz = 8_000_000

func TestRoutineCycleBudget(t *testing.T) {
	trace, err := Simulate(Routine, [FrameSize]byte{0xA5, 0x00, 0xFF}, clock8MHz)
	require.NoError(t, err)

	assert.Equal(t, 125*time.Nanosecond, trace.Duration(1))
	assert.Equal(t, 257, trace.Cycles)
	require.Len(t, trace.Edges, 2*FrameBits)

	var rises []int
	for _, e := range trace.Edges {
		if e.High {
			rises = append(rises, e.Cycle)
		}
	}

	for i := 0; i+1 < len(rises); i++ {
		period := rises[i+1] - rises[i]
		if (i+1)%8 == 0 {
			// Loading the next byte stretches the low phase of the last bit.
			assert.Equal(t, 13, period, "byte boundary after bit %d", i)
		} else {
			assert.Equal(t, 10, period, "bit %d", i)
		}
	}
}

func TestRoutineHighCycles(t *testing.T) {
	trace, err := Simulate(Routine, [FrameSize]byte{0xF0, 0x0F, 0x55}, clock8MHz)
	require.NoError(t, err)

	bits := Bits([FrameSize]byte{0xF0, 0x0F, 0x55})
	for i := 0; i < FrameBits; i++ {
		rise, fall := trace.Edges[2*i], trace.Edges[2*i+1]
		require.True(t, rise.High)
		require.False(t, fall.High)

		want := 3
		if bits[i] {
			want = 5
		}
		assert.Equal(t, want, fall.Cycle-rise.Cycle, "bit %d", i)
	}
}

func TestRoutineDutyCycle(t *testing.T) {
	trace, err := Simulate(Routine, [FrameSize]byte{0x55, 0x55, 0x55}, clock8MHz)
	require.NoError(t, err)

	pulses := trace.Pulses()
	require.Len(t, pulses, FrameBits)

	// First two bits of 0x55 are 0 then 1, both inside the byte.
	zero, one := pulses[0], pulses[1]
	assert.Equal(t, zero.Period(), one.Period())
	assert.InDelta(t, 0.31, float64(zero.High)/float64(zero.Period()), 0.02)
	assert.InDelta(t, 0.52, float64(one.High)/float64(one.Period()), 0.03)
}

func TestRoutineMasksInterrupts(t *testing.T) {
	trace, err := Simulate(Routine, [FrameSize]byte{0xFF, 0xFF, 0xFF}, clock8MHz)
	require.NoError(t, err)

	for _, e := range trace.Edges {
		assert.True(t, trace.Masked(e.Cycle), "edge at cycle %d is unmasked", e.Cycle)
	}
	assert.Equal(t, 0, trace.MaskedFrom)
	assert.Equal(t, trace.Cycles-1, trace.MaskedTo)
}

func TestSimulateBadLabel(t *testing.T) {
	routine := []Instruction{
		{Op: OpCLI},
		{Op: OpRJMP, Target: "nowhere"},
	}
	_, err := Simulate(routine, [FrameSize]byte{}, clock8MHz)
	assert.Error(t, err)
}

func TestSimulateRunaway(t *testing.T) {
	routine := []Instruction{
		{Op: OpCLI, Label: "loop"},
		{Op: OpRJMP, Target: "loop"},
	}
	_, err := Simulate(routine, [FrameSize]byte{}, clock8MHz)
	assert.Error(t, err)
}

func TestSimulateUnmasked(t *testing.T) {
	routine := []Instruction{{Op: OpNOP}}
	_, err := Simulate(routine, [FrameSize]byte{}, clock8MHz)
	assert.Error(t, err)
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "brcs", OpBRCS.String())
	assert.Equal(t, "Opcode(99)", Opcode(99).String())
}

func TestRoutineAsmMatchesRoutine(t *testing.T) {
	asm, err := Asm(Routine)
	require.NoError(t, err)
	assert.Equal(t, RoutineAsm, asm)
}

func TestAsm(t *testing.T) {
	asm, err := Asm([]Instruction{
		{Op: OpCLI, Label: "top"},
		{Op: OpLD, Rd: 21},
		{Op: OpOUT, Rd: 20},
		{Op: OpRJMP, Target: "top"},
	})
	require.NoError(t, err)
	assert.Equal(t, "wire_top:\n\tcli\n\tld {byte}, {data}+\n\tout 0x18, {hi}\n\trjmp wire_top\n", asm)
}

func TestAsmUnknownRegister(t *testing.T) {
	_, err := Asm([]Instruction{{Op: OpDEC, Rd: 30}})
	assert.Error(t, err)
}
