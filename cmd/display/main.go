// Command display is the player-board end of the serial link. It decodes
// frames from the host, logs what the board would draw, and turns keyboard
// steps on stdin into menu events sent back to the host.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catanrig/internal/hardware"
	"catanrig/internal/protocol"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "display failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("display", flag.ContinueOnError)
	device := fs.String("device", os.Getenv("UART_DEVICE"), "serial device shared with the host")
	poll := fs.Duration("poll", 4*time.Millisecond, "read poll interval")
	debug := fs.Bool("debug", false, "log every decoded packet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *device == "" {
		return fmt.Errorf("a serial device is required")
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level}))

	dev, err := os.OpenFile(*device, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *device, err)
	}
	defer dev.Close()
	go func() {
		// Closing the device releases the receiver's blocked read.
		<-ctx.Done()
		dev.Close()
	}()

	return serve(ctx, dev, dev, stdin, *poll, logger)
}

// serve runs one display over a link read from r and written to w.
func serve(ctx context.Context, r io.Reader, w io.Writer, stdin io.Reader, poll time.Duration, logger *slog.Logger) error {
	d := hardware.NewDisplay(protocol.NewSender(w), logger)
	d.Input = hardware.NewKeyInput(stdin)

	parser := protocol.NewParser(
		protocol.MagicSnapshot,
		protocol.MagicTileVector,
		protocol.MagicMenuControl,
		protocol.MagicMenuRender,
	)
	parser.OnDrop = func(magic byte, err error) {
		logger.Warn("dropped frame", "magic", magic, "error", err)
	}

	var shown [protocol.MenuLines]string
	redraw := func() {
		if d.Lines == shown {
			return
		}
		shown = d.Lines
		logger.Info("draw", "player", d.Menu.Active(), "lines", shown[:])
	}

	recv := &protocol.Receiver{
		Parser: parser,
		Poll:   poll,
		Logger: logger,
		Idle: func() {
			d.Idle()
			redraw()
		},
	}
	err := recv.Run(ctx, r, func(p protocol.Packet) error {
		if err := d.Handle(p); err != nil {
			return err
		}
		redraw()
		return nil
	})
	st := parser.Stats()
	logger.Info("link closed", "decoded", st.Decoded, "dropped", st.Dropped, "skipped", st.Skipped)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
