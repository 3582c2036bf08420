package drive

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"

	"slate/internal/config"
	"slate/internal/logging"
	"slate/internal/services"
)

// Controller responses. Each command is acknowledged with ok, then completes
// with done (or halted when a stop interrupted the motion). Anything prefixed
// err is a hardware or protocol fault.
const (
	replyOK     = "ok"
	replyDone   = "done"
	replyHalted = "halted"
	replyErr    = "err"
)

// SerialController drives the motion controller over a line-oriented serial
// protocol.
type SerialController struct {
	portName string
	baudRate int
	park     config.Motion
	logger   *slog.Logger

	mu     sync.Mutex
	port   serial.Port
	reader *bufio.Scanner
	closed bool

	flagMu  sync.Mutex
	aborted bool
}

var _ Controller = (*SerialController)(nil)

// NewSerialController builds an unconnected controller; Initialize opens the
// port.
func NewSerialController(cfg config.Drive, motion config.Motion, logger *slog.Logger) *SerialController {
	return &SerialController{
		portName: cfg.Port,
		baudRate: cfg.BaudRate,
		park:     motion,
		logger:   logging.NewComponentLogger(logger, "drive"),
	}
}

func (c *SerialController) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: c.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(c.portName, mode)
	if err != nil {
		return services.Wrap(services.ErrDrive, "DRIVE_INIT", "open port", c.portName, err)
	}
	// The abort flag survives initialization: a stop requested before the
	// session opened must still unwind the run. Only Resume clears it.
	c.port = port
	c.reader = bufio.NewScanner(port)
	c.closed = false

	if err := c.commandLocked(ctx, "INIT"); err != nil {
		return err
	}
	c.logger.Info("drive session established", logging.String("port", c.portName))
	return nil
}

func (c *SerialController) Home(ctx context.Context, axis Axis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandLocked(ctx, "HOME "+string(axis))
}

func (c *SerialController) Move(ctx context.Context, x, y, z float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandLocked(ctx, formatMove("MOVE", x, y, z))
}

func (c *SerialController) MoveDirect(ctx context.Context, x, y, z float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandLocked(ctx, formatMove("MOVD", x, y, z))
}

// Stop latches the abort flag immediately, then delivers the STOP command.
// Commands are serialized, so the wire command goes out once any in-flight
// command completes; pipeline checkpoints observe the flag without waiting.
func (c *SerialController) Stop(ctx context.Context) error {
	c.setAborted(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		// No session yet; the latched flag alone stops the pipeline.
		return nil
	}
	return c.commandLocked(ctx, "STOP")
}

func (c *SerialController) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port != nil {
		if err := c.commandLocked(ctx, "RESUME"); err != nil {
			return err
		}
	}
	c.setAborted(false)
	return nil
}

func (c *SerialController) Terminate(ctx context.Context, polite bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.port == nil {
		return nil
	}

	if polite {
		if err := c.commandLocked(ctx, formatMove("MOVE", c.park.ParkX, c.park.ParkY, c.park.ParkZ)); err != nil {
			// Park is best-effort; the session must still close.
			c.logger.Warn("park move failed during termination", logging.Error(err))
		}
	}
	termErr := c.commandLocked(ctx, "TERM")

	closeErr := c.port.Close()
	c.port = nil
	c.reader = nil
	c.closed = true
	c.logger.Info("drive session released", logging.Bool("polite", polite))

	if termErr != nil {
		return termErr
	}
	if closeErr != nil {
		return services.Wrap(services.ErrDrive, "TERM", "close port", c.portName, closeErr)
	}
	return nil
}

func (c *SerialController) Aborted() bool {
	c.flagMu.Lock()
	defer c.flagMu.Unlock()
	return c.aborted
}

func (c *SerialController) setAborted(v bool) {
	c.flagMu.Lock()
	c.aborted = v
	c.flagMu.Unlock()
}

// commandLocked submits one command line and blocks until the controller
// reports completion. Callers must hold c.mu.
func (c *SerialController) commandLocked(ctx context.Context, command string) error {
	if c.port == nil {
		return services.Wrap(services.ErrDrive, "", "submit command", "no active session", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.port.Write([]byte(command + "\n")); err != nil {
		return services.Wrap(services.ErrDrive, "", "write command", command, err)
	}
	c.logger.Debug("command submitted", logging.String("command", command))

	acked := false
	for c.reader.Scan() {
		line := strings.TrimSpace(c.reader.Text())
		switch {
		case line == "":
			continue
		case line == replyOK:
			acked = true
		case line == replyDone, line == replyHalted:
			if !acked {
				c.logger.Debug("completion without ack", logging.String("command", command))
			}
			return nil
		case strings.HasPrefix(line, replyErr):
			detail := strings.TrimSpace(strings.TrimPrefix(line, replyErr))
			return services.Wrap(services.ErrDrive, "", "execute command", fmt.Sprintf("%s: %s", command, detail), nil)
		default:
			// Telemetry lines are interleaved with command replies; skip them.
			continue
		}
	}
	if err := c.reader.Err(); err != nil {
		return services.Wrap(services.ErrDrive, "", "read reply", command, err)
	}
	return services.Wrap(services.ErrDrive, "", "read reply", command+": connection closed", nil)
}

func formatMove(verb string, x, y, z float64) string {
	return verb + " " +
		strconv.Itoa(Micrometers(x)) + " " +
		strconv.Itoa(Micrometers(y)) + " " +
		strconv.Itoa(Micrometers(z))
}
