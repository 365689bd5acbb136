package sim

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/nightlight/ledserial"
	"libdb.so/nightlight/wire"
)

// Mirror forwards simulated frames to a real LED behind a serial controller.
type Mirror struct {
	logger *slog.Logger
	frames chan [wire.FrameSize]byte
}

// NewMirror creates a new mirror.
func NewMirror(logger *slog.Logger) *Mirror {
	return &Mirror{
		logger: logger,
		frames: make(chan [wire.FrameSize]byte, 1),
	}
}

// Queue queues a frame for the controller. The frame is dropped if the
// controller has not caught up with the previous one.
func (m *Mirror) Queue(frame [wire.FrameSize]byte) {
	select {
	case m.frames <- frame:
	default:
		m.logger.Debug("controller busy, dropping frame", "frame", frame)
	}
}

// OpenSerial opens the serial port of a controller.
func OpenSerial(device string, baud int) (serial.Port, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}
	return port, nil
}

// Run forwards frames to port until ctx is canceled. It closes port before
// returning.
func (m *Mirror) Run(ctx context.Context, port io.ReadWriteCloser) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		m.logger.Debug("closing controller port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "failed to close controller port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		return m.writeLoop(ctx, port)
	})
	errg.Go(func() error {
		return m.readLoop(ctx, port)
	})
	return errg.Wait()
}

func (m *Mirror) writeLoop(ctx context.Context, w io.Writer) error {
	if err := m.writePacket(w, ledserial.ClearPacket{}); err != nil {
		return errors.Wrap(err, "failed to clear LED")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-m.frames:
			if err := m.writePacket(w, ledserial.ShowPacket{Frame: frame}); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Warn(
					"failed to write packet",
					"frame", frame,
					"error", err)
			}
		}
	}
}

func (m *Mirror) readLoop(ctx context.Context, r io.Reader) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(r)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			m.logger.Debug(
				"received ack packet from controller",
				"acked_for", p.IncomingPacketType)

		case ledserial.ErrorPacket:
			m.logger.Warn(
				"received error packet from controller",
				"message", p.Message)

		case ledserial.LogPacket:
			m.logger.Info(
				"received log packet from controller",
				"message", p.Message)
		}
	}

	return ctx.Err()
}

func (m *Mirror) writePacket(w io.Writer, p ledserial.IncomingPacket) error {
	m.logger.Debug(
		"writing packet",
		"type", p.Type())

	return ledserial.WriteIncomingPacket(w, p)
}
