// Package uci runs a UCI chess engine such as Stockfish as a child process.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/coach/internal/oracle"
)

// ErrEngineExited indicates the engine stopped producing output.
var ErrEngineExited = errors.New("uci: engine exited")

// Engine is a UCI engine speaking over stdin and stdout.
// It is not safe for concurrent use; wrap it in an oracle.Guard.
type Engine struct {
	cmd     *exec.Cmd
	in      *bufio.Writer
	out     *bufio.Scanner
	closer  io.Closer
	multiPV int
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Compile-time check that Engine implements oracle.Engine.
var _ oracle.Engine = (*Engine)(nil)

// Start launches the engine binary at path and completes the UCI handshake.
func Start(path string, opts ...Option) (*Engine, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}

	e := newEngine(stdout, stdin, cfg)
	e.cmd = cmd
	if err := e.handshake(cfg.setOptions); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("handshake with %s: %w", path, err)
	}

	cfg.logger.Info("engine started", zap.String("path", path))
	return e, nil
}

func newEngine(r io.Reader, w io.WriteCloser, cfg options) *Engine {
	out := bufio.NewScanner(r)
	out.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Engine{
		in:      bufio.NewWriter(w),
		out:     out,
		closer:  w,
		multiPV: 1,
		logger:  cfg.logger.Named("uci"),
	}
}

func (e *Engine) handshake(setOptions []setOption) error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok"); err != nil {
		return err
	}
	for _, o := range setOptions {
		if err := e.send(fmt.Sprintf("setoption name %s value %s", o.name, o.value)); err != nil {
			return err
		}
	}
	return e.ready()
}

// Analyse searches fen and returns up to multiPV lines ordered by rank.
func (e *Engine) Analyse(ctx context.Context, fen string, limit oracle.Limit, multiPV int) ([]oracle.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if multiPV < 1 {
		multiPV = 1
	}
	if err := e.setMultiPV(multiPV); err != nil {
		return nil, err
	}
	if err := e.search(fen, limit); err != nil {
		return nil, err
	}

	lines := make(map[int]oracle.Info)
	_, err := e.readUntilBestMove(func(line string) {
		if info, ok := ParseInfo(line); ok {
			lines[info.MultiPV] = info
		}
	})
	if err != nil {
		return nil, err
	}

	infos := make([]oracle.Info, 0, len(lines))
	for _, info := range lines {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].MultiPV < infos[j].MultiPV })
	return infos, nil
}

// Play searches fen and returns the engine's best move, or "" if there is none.
func (e *Engine) Play(ctx context.Context, fen string, limit oracle.Limit) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.setMultiPV(1); err != nil {
		return "", err
	}
	if err := e.search(fen, limit); err != nil {
		return "", err
	}
	return e.readUntilBestMove(nil)
}

// Close asks the engine to quit and waits for the process to exit.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		_ = e.send("quit")
		if err := e.closer.Close(); err != nil {
			e.closeErr = err
		}
		if e.cmd != nil {
			if err := e.cmd.Wait(); err != nil && e.closeErr == nil {
				e.closeErr = err
			}
		}
	})
	return e.closeErr
}

func (e *Engine) setMultiPV(n int) error {
	if n == e.multiPV {
		return nil
	}
	if err := e.send("setoption name MultiPV value " + strconv.Itoa(n)); err != nil {
		return err
	}
	if err := e.ready(); err != nil {
		return err
	}
	e.multiPV = n
	return nil
}

func (e *Engine) search(fen string, limit oracle.Limit) error {
	if err := e.send("position fen " + fen); err != nil {
		return err
	}
	return e.send(goCommand(limit))
}

func goCommand(limit oracle.Limit) string {
	switch {
	case limit.Depth > 0 && limit.MoveTime > 0:
		return fmt.Sprintf("go depth %d movetime %d", limit.Depth, limit.MoveTime.Milliseconds())
	case limit.MoveTime > 0:
		return fmt.Sprintf("go movetime %d", limit.MoveTime.Milliseconds())
	case limit.Depth > 0:
		return fmt.Sprintf("go depth %d", limit.Depth)
	default:
		return "go depth 1"
	}
}

func (e *Engine) ready() error {
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

func (e *Engine) send(cmd string) error {
	e.logger.Debug("send", zap.String("cmd", cmd))
	if _, err := e.in.WriteString(cmd + "\n"); err != nil {
		return fmt.Errorf("writing %q: %w", cmd, err)
	}
	if err := e.in.Flush(); err != nil {
		return fmt.Errorf("writing %q: %w", cmd, err)
	}
	return nil
}

func (e *Engine) waitFor(expected string) error {
	for e.out.Scan() {
		if strings.TrimSpace(e.out.Text()) == expected {
			return nil
		}
	}
	return e.scanErr(expected)
}

// readUntilBestMove feeds every line to onLine and returns the best move.
func (e *Engine) readUntilBestMove(onLine func(string)) (string, error) {
	for e.out.Scan() {
		line := e.out.Text()
		if strings.HasPrefix(line, "bestmove") {
			parts := strings.Fields(line)
			if len(parts) < 2 || parts[1] == "(none)" {
				return "", nil
			}
			return parts[1], nil
		}
		if onLine != nil {
			onLine(line)
		}
	}
	return "", e.scanErr("bestmove")
}

func (e *Engine) scanErr(expected string) error {
	if err := e.out.Err(); err != nil {
		return fmt.Errorf("reading engine output: %w", err)
	}
	return fmt.Errorf("%w before %q", ErrEngineExited, expected)
}

// ParseInfo parses a UCI "info" line. It reports false for lines that carry
// no score, such as "info string" or "currmove" updates.
func ParseInfo(line string) (oracle.Info, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 || parts[0] != "info" {
		return oracle.Info{}, false
	}

	info := oracle.Info{MultiPV: 1}
	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case "string":
			return oracle.Info{}, false
		case "depth":
			if i+1 < len(parts) {
				info.Depth, _ = strconv.Atoi(parts[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(parts) {
				if n, err := strconv.Atoi(parts[i+1]); err == nil {
					info.MultiPV = n
				}
				i++
			}
		case "score":
			if i+2 < len(parts) {
				n, err := strconv.Atoi(parts[i+2])
				if err == nil {
					switch parts[i+1] {
					case "cp":
						info.Score = oracle.CP(n)
					case "mate":
						info.Score = oracle.MateIn(n)
					}
				}
				i += 2
			}
		case "pv":
			info.PV = append([]string(nil), parts[i+1:]...)
			i = len(parts)
		}
	}

	if !info.Score.Valid() {
		return oracle.Info{}, false
	}
	return info, true
}
