package effect

import (
	"errors"
	"fmt"

	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/nap"
)

// Timing of the morse elements, in units.
const (
	DotUnits   = 1
	DashUnits  = 3
	ElementGap = 1 // after every dot or dash
	LetterGap  = 3 // after every letter, on top of the element gap
	WordGap    = 7 // from the last element of a word to the next word
)

// spaceUnits is what a space adds after the gaps that close a letter.
const spaceUnits = WordGap - ElementGap - LetterGap

// morseCodes packs each character as its element count in the top 3 bits and
// its elements in the low 5 bits, first element in the highest of them, with
// 1 for a dash.
var morseCodes = map[rune]uint8{
	'A': code(".-"),
	'B': code("-..."),
	'C': code("-.-."),
	'D': code("-.."),
	'E': code("."),
	'F': code("..-."),
	'G': code("--."),
	'H': code("...."),
	'I': code(".."),
	'J': code(".---"),
	'K': code("-.-"),
	'L': code(".-.."),
	'M': code("--"),
	'N': code("-."),
	'O': code("---"),
	'P': code(".--."),
	'Q': code("--.-"),
	'R': code(".-."),
	'S': code("..."),
	'T': code("-"),
	'U': code("..-"),
	'V': code("...-"),
	'W': code(".--"),
	'X': code("-..-"),
	'Y': code("-.--"),
	'Z': code("--.."),
	'0': code("-----"),
	'1': code(".----"),
	'2': code("..---"),
	'3': code("...--"),
	'4': code("....-"),
	'5': code("....."),
	'6': code("-...."),
	'7': code("--..."),
	'8': code("---.."),
	'9': code("----."),
}

func code(s string) uint8 {
	var pattern uint8
	for _, c := range s {
		pattern <<= 1
		if c == '-' {
			pattern |= 1
		}
	}
	return uint8(len(s))<<5 | pattern
}

// Symbol is a stretch of time with the LED on or off.
type Symbol struct {
	On    bool
	Units uint8
}

// EncodeMorse turns text into a timeline of symbols. Letters are
// case-insensitive and spaces separate words; anything else is an error.
func EncodeMorse(text string) ([]Symbol, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}

	var symbols []Symbol
	for _, r := range text {
		if r == ' ' {
			symbols = append(symbols, Symbol{Units: spaceUnits})
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}

		c, ok := morseCodes[r]
		if !ok {
			return nil, fmt.Errorf("no morse code for %q", r)
		}

		n := c >> 5
		for i := int(n) - 1; i >= 0; i-- {
			units := uint8(DotUnits)
			if c&(1<<i) != 0 {
				units = DashUnits
			}
			symbols = append(symbols,
				Symbol{On: true, Units: units},
				Symbol{Units: ElementGap},
			)
		}
		symbols = append(symbols, Symbol{Units: LetterGap})
	}

	return symbols, nil
}

// Morse blinks a text message.
type Morse struct {
	Text    string `toml:"text"`
	Channel int    `toml:"channel"`
	Level   uint8  `toml:"level"`
	// Unit is the length of a dot.
	Unit uint16 `toml:"unit"`
	// Idle is the pause after the whole message.
	Idle uint16 `toml:"idle"`

	symbols []Symbol
}

// DefaultMorse sends SOS in red at about 9 words per minute.
var DefaultMorse = Morse{
	Text:    "SOS",
	Channel: engine.Red,
	Level:   0xff,
	Unit:    128,
	Idle:    4096,
}

// Validate checks the parameters.
func (m Morse) Validate() error {
	if err := checkChannel(m.Channel); err != nil {
		return err
	}
	if m.Unit < nap.MinPeriod || m.Unit > 0xFFFF/WordGap {
		return fmt.Errorf("unit %d out of range", m.Unit)
	}
	if _, err := EncodeMorse(m.Text); err != nil {
		return err
	}
	return nil
}

func (m *Morse) String() string { return string(MorseKind) }

// Start implements engine.Starter.
func (m *Morse) Start(e *engine.Engine) {
	if m.symbols != nil {
		return
	}
	symbols, err := EncodeMorse(m.Text)
	if err != nil {
		e.Logger().Warn("cannot encode morse text", "text", m.Text, "err", err)
		return
	}
	m.symbols = symbols
}

// Step implements engine.Effect.
func (m *Morse) Step(e *engine.Engine) {
	var on engine.Color
	on[m.Channel] = m.Level

	for _, s := range m.symbols {
		switch {
		case s.On:
			e.Show(on)
		case !e.State().Color.IsOff():
			e.Off()
		}
		e.Nap(uint16(s.Units) * m.Unit)
	}

	e.Nap(m.Idle)
}
