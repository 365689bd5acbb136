package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/nightlight/wire"
)

func TestBoardTransmit(t *testing.T) {
	b := NewBoard(NewScript())

	var seen [][wire.FrameSize]byte
	b.OnFrame = func(f [wire.FrameSize]byte) { seen = append(seen, f) }

	b.LED.Transmit([wire.FrameSize]byte{0x10, 0x20, 0x30})
	b.LED.Transmit([wire.FrameSize]byte{})

	want := [][wire.FrameSize]byte{{0x10, 0x20, 0x30}, {}}
	assert.Equal(t, want, b.Frames())
	assert.Equal(t, want, seen)
	assert.Empty(t, b.Violations())
}

func TestBoardSleep(t *testing.T) {
	b := NewBoard(NewScript())

	b.Sleeper.Sleep(1024 + 512 + 3)

	assert.Equal(t, uint64(1536), b.Now())
	assert.Equal(t, []Event{
		{Kind: HaltEvent, Tick: 0, Ticks: 1024},
		{Kind: HaltEvent, Tick: 1024, Ticks: 512},
	}, b.Events())
	assert.Equal(t, []Event{
		{Kind: NapEvent, Tick: 0, Ticks: 1536},
	}, b.Timeline())
	assert.Empty(t, b.Violations())
}

func TestBoardSample(t *testing.T) {
	b := NewBoard(NewScript(150, 40))

	assert.Equal(t, uint8(150), b.Sensor.Sample())
	assert.Equal(t, uint8(40), b.Sensor.Sample())
	assert.Equal(t, uint8(40), b.Sensor.Sample())
	assert.Empty(t, b.Violations())
}

func TestBoardPace(t *testing.T) {
	b := NewBoard(NewScript())

	var paced []uint16
	b.Pace = func(ticks uint16) { paced = append(paced, ticks) }

	b.Sleeper.Sleep(100)
	assert.Equal(t, []uint16{64, 32}, paced)
}

func TestBoardDetectsUnmaskedTransmit(t *testing.T) {
	b := NewBoard(NewScript())

	l := (*line)(b)
	b.irq = true
	require.NoError(t, l.WriteByte(1))

	assert.NotEmpty(t, b.Violations())
}

func TestBoardDetectsMaskedHalt(t *testing.T) {
	b := NewBoard(NewScript())

	c := (*countdown)(b)
	c.Configure(b.Sleeper.Ladder[0])
	c.WaitForExpiry()

	require.Len(t, b.Violations(), 1)
	assert.Contains(t, b.Violations()[0].Error(), "never wake")
}

func TestBoardReset(t *testing.T) {
	b := NewBoard(NewScript())
	b.Sleeper.Sleep(16)
	b.Reset()

	assert.Empty(t, b.Events())
	assert.Equal(t, uint64(16), b.Now())
}

func TestScript(t *testing.T) {
	s := NewScript(1, 2).Loop()
	assert.Equal(t, []uint8{1, 2, 1, 2}, []uint8{s.Next(), s.Next(), s.Next(), s.Next()})

	s, err := ParseScript("150, 150,40")
	require.NoError(t, err)
	assert.Equal(t, []uint8{150, 150, 40, 40}, []uint8{s.Next(), s.Next(), s.Next(), s.Next()})

	_, err = ParseScript("300")
	assert.Error(t, err)

	_, err = ParseScript(" , ")
	assert.Error(t, err)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "nap", NapEvent.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
}
