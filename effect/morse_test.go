package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMorseE(t *testing.T) {
	symbols, err := EncodeMorse("E")
	require.NoError(t, err)

	assert.Equal(t, []Symbol{
		{On: true, Units: DotUnits},
		{Units: ElementGap},
		{Units: LetterGap},
	}, symbols)
}

func TestEncodeMorse(t *testing.T) {
	symbols, err := EncodeMorse("a t")
	require.NoError(t, err)

	assert.Equal(t, []Symbol{
		{On: true, Units: DotUnits},
		{Units: ElementGap},
		{On: true, Units: DashUnits},
		{Units: ElementGap},
		{Units: LetterGap},
		{Units: spaceUnits},
		{On: true, Units: DashUnits},
		{Units: ElementGap},
		{Units: LetterGap},
	}, symbols)
}

func TestMorseWordGap(t *testing.T) {
	symbols, err := EncodeMorse("E E")
	require.NoError(t, err)

	// Count the dark units between the two dots.
	var gap int
	for _, s := range symbols[1:] {
		if s.On {
			break
		}
		gap += int(s.Units)
	}
	assert.Equal(t, WordGap, gap)
}

func TestEncodeMorseTable(t *testing.T) {
	tests := map[rune]string{
		'S': "...",
		'O': "---",
		'Q': "--.-",
		'0': "-----",
		'5': ".....",
		'9': "----.",
	}

	for r, want := range tests {
		symbols, err := EncodeMorse(string(r))
		require.NoError(t, err)

		var got []byte
		for _, s := range symbols {
			if !s.On {
				continue
			}
			if s.Units == DashUnits {
				got = append(got, '-')
			} else {
				got = append(got, '.')
			}
		}
		assert.Equal(t, want, string(got), "code for %q", r)
	}
}

func TestEncodeMorseInvalid(t *testing.T) {
	_, err := EncodeMorse("")
	assert.Error(t, err)

	_, err = EncodeMorse("SOS!")
	assert.Error(t, err)
}

func TestMorseStepSingleDot(t *testing.T) {
	m := DefaultMorse
	m.Text = "E"
	m.Unit = 100
	m.Idle = 1000
	e, r := newRecorded(&m)

	m.Start(e)
	m.Step(e)

	assert.Equal(t, []string{
		"show 00ff00", "nap 100",
		"show 000000", "nap 100",
		"nap 300",
		"nap 1000",
	}, r.log)
}

func TestMorseStepOnlyTurnsOffOnce(t *testing.T) {
	m := DefaultMorse
	m.Text = "T T"
	m.Unit = 16
	e, r := newRecorded(&m)

	m.Start(e)
	m.Step(e)

	var shows int
	for _, entry := range r.log {
		if entry[:4] == "show" {
			shows++
		}
	}
	assert.Equal(t, 4, shows, "one on and one off per dash")
}
