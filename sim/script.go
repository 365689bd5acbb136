package sim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Script is a sequence of light samples the simulated sensor returns. Once
// exhausted it either starts over or keeps returning the last sample.
type Script struct {
	samples []uint8
	next    int
	loop    bool
}

// NewScript returns a script that holds its last sample forever.
func NewScript(samples ...uint8) *Script {
	if len(samples) == 0 {
		samples = []uint8{0xFF}
	}
	return &Script{samples: samples}
}

// Loop makes the script start over once exhausted.
func (s *Script) Loop() *Script {
	s.loop = true
	return s
}

// Next returns the next sample.
func (s *Script) Next() uint8 {
	v := s.samples[s.next]
	switch {
	case s.next+1 < len(s.samples):
		s.next++
	case s.loop:
		s.next = 0
	}
	return v
}

// ParseScript parses a comma-separated list of samples, such as "150,150,40".
func ParseScript(str string) (*Script, error) {
	var samples []uint8
	for _, field := range strings.Split(str, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseUint(field, 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sample %q", field)
		}
		samples = append(samples, uint8(v))
	}
	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}
	return NewScript(samples...), nil
}
