package sim

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"libdb.so/nightlight/ledserial"
	"libdb.so/nightlight/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(b []byte) (int, error) { return len(b), nil }

func TestMirror(t *testing.T) {
	defer goleak.VerifyNone(t)

	host, controller := net.Pipe()
	defer controller.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m := NewMirror(discardLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx, host) }()

	p, err := ledserial.ReadIncomingPacket(controller)
	require.NoError(t, err)
	assert.Equal(t, ledserial.ClearPacket{}, p)

	frames := [][wire.FrameSize]byte{
		{0x00, 0xFF, 0x00},
		{0x10, 0x20, 0x30},
	}
	for _, frame := range frames {
		m.Queue(frame)

		p, err := ledserial.ReadIncomingPacket(controller)
		require.NoError(t, err)
		assert.Equal(t, ledserial.ShowPacket{Frame: frame}, p)

		require.NoError(t, ledserial.WriteOutgoingPacket(controller, ledserial.AckPacket{
			IncomingPacketType: p.Type(),
		}))
	}

	require.NoError(t, ledserial.WriteOutgoingPacket(controller, ledserial.LogPacket{
		Message: "hello from the controller",
	}))

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("mirror did not stop")
	}
}

func TestMirrorQueueDropsWhenBusy(t *testing.T) {
	m := NewMirror(discardLogger())

	m.Queue([wire.FrameSize]byte{1})
	m.Queue([wire.FrameSize]byte{2})

	assert.Equal(t, [wire.FrameSize]byte{1}, <-m.frames)
	assert.Empty(t, m.frames)
}
