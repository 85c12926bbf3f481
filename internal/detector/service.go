package detector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

const serviceScript = "hand_service.py"

// ErrServiceNotFound is returned when hand_service.py cannot be located.
var ErrServiceNotFound = errors.New("hand service not found")

// handService owns one Python hand-tracking process. Requests are a
// 4-byte big-endian length followed by a JPEG; each reply is one JSON line.
type handService struct {
	python string
	args   []string

	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Reader
}

func (s *handService) running() bool { return s.cmd != nil }

func (s *handService) start() error {
	cmd := exec.Command(s.python, s.args...)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("hand service stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("hand service stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.python, err)
	}

	s.cmd, s.in, s.out = cmd, in, bufio.NewReader(out)
	return nil
}

// exchange sends one encoded frame and waits for the matching reply line.
func (s *handService) exchange(jpeg []byte) ([]byte, error) {
	msg := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(msg, uint32(len(jpeg)))
	copy(msg[4:], jpeg)

	if _, err := s.in.Write(msg); err != nil {
		return nil, fmt.Errorf("send frame: %w", err)
	}
	line, err := s.out.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return line, nil
}

// stop closes stdin, which the service treats as a shutdown request, and
// reaps the process.
func (s *handService) stop() error {
	if s.cmd == nil {
		return nil
	}
	s.in.Close()
	err := s.cmd.Wait()
	s.cmd, s.in, s.out = nil, nil, nil
	return err
}

func serviceArgs(script string, config Config) []string {
	return []string{
		script,
		"--max-hands", strconv.Itoa(config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(config.MinTrackingConf, 'f', -1, 64),
	}
}

// searchDirs lists where the service and its virtualenv may live, nearest
// first.
func searchDirs() []string {
	dirs := []string{".", ".."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".handrps"))
	}
	return dirs
}

func findServiceScript() string {
	var candidates []string
	for _, dir := range searchDirs() {
		candidates = append(candidates, filepath.Join(dir, "scripts", serviceScript))
	}
	return firstExisting(candidates)
}

// findPython prefers a virtualenv interpreter and falls back to python3 on PATH.
func findPython() string {
	var candidates []string
	for _, dir := range searchDirs() {
		candidates = append(candidates, filepath.Join(dir, "venv", "bin", "python"))
	}
	if p := firstExisting(candidates); p != "" {
		return p
	}
	return "python3"
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}
