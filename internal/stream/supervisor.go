package stream

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/logging"
)

const (
	// PollWait is the non-blocking read window per poll
	PollWait = 10 * time.Millisecond

	// TerminateWait is how long a process gets to exit after SIGTERM
	// before it is force-killed
	TerminateWait = 2 * time.Second

	// DefaultDecoderPath is the decode binary resolved from PATH
	DefaultDecoderPath = "ffmpeg"
)

// PollStatus classifies the outcome of a single non-blocking poll.
type PollStatus int

const (
	// PollNoData means nothing was ready within the wait window.
	// Callers either retry next cycle or substitute a zero-filled
	// chunk, depending on their silence policy.
	PollNoData PollStatus = iota

	// PollData means Data carries up to one chunk of PCM
	PollData

	// PollEOF means the session ended (pipe EOF or dead process) and
	// has been torn down
	PollEOF
)

// PollResult is the outcome of Supervisor.Poll.
type PollResult struct {
	Status PollStatus
	Data   []byte
}

// Session pairs a channel tag with its running decode process and the
// read end of the process's output pipe. At most one Session exists per
// tag at any time.
type Session struct {
	Tag       string
	URL       string
	Format    Format
	ChunkSize int
	StartedAt time.Time

	cmd      *exec.Cmd
	readEnd  *os.File
	writeEnd *os.File
	done     chan struct{} // closed by the waiter once the process exits
}

// exited reports whether the decode process has already terminated,
// without blocking.
func (s *Session) exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Supervisor owns the decode process and output pipe of every active
// channel. It launches processes on demand, serves non-blocking PCM
// reads, and tears sessions down on death, EOF, or request.
//
// All methods are safe for concurrent use; Stop in particular must
// tolerate being invoked from both the polling loop and external
// triggers without double-killing.
type Supervisor struct {
	// DecoderPath is the decode binary to launch
	DecoderPath string

	// Format is the fixed PCM profile every session decodes to
	Format Format

	// CommandFunc overrides decode command construction (tests)
	CommandFunc func(url string) *exec.Cmd

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSupervisor creates a supervisor using the given decoder binary,
// or ffmpeg from PATH when empty.
func NewSupervisor(decoderPath string) *Supervisor {
	if decoderPath == "" {
		decoderPath = DefaultDecoderPath
	}
	return &Supervisor{
		DecoderPath: decoderPath,
		Format:      DefaultFormat(),
		sessions:    make(map[string]*Session),
	}
}

// ChunkSize returns the chunk size sessions deliver.
func (s *Supervisor) ChunkSize() int {
	return s.Format.ChunkSize()
}

// Has reports whether a session exists for the tag.
func (s *Supervisor) Has(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[tag]
	return ok
}

// Count returns the number of running sessions.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Running returns the tags of all running sessions.
func (s *Supervisor) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]string, 0, len(s.sessions))
	for tag := range s.sessions {
		tags = append(tags, tag)
	}
	return tags
}

// Start launches a decode process for the tag reading the stream URL and
// writing raw PCM to a fresh pipe.
//
// Starting an already-running tag is a no-op returning nil. On launch
// failure no partial state is retained: the pipe is torn down before the
// error is returned.
func (s *Supervisor) Start(tag, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[tag]; exists {
		logging.Warn("Stream already active", zap.String("tag", tag))
		return nil
	}

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		logging.Error("Failed to create pipe", zap.String("tag", tag), zap.Error(err))
		return fmt.Errorf("failed to create pipe: %w", err)
	}

	cmd := s.command(url)
	cmd.Stdout = writeEnd

	if err := cmd.Start(); err != nil {
		_ = readEnd.Close()
		_ = writeEnd.Close()
		logging.Error("Failed to launch decoder",
			zap.String("tag", tag),
			zap.String("url", url),
			zap.Error(err),
		)
		return fmt.Errorf("failed to launch decoder: %w", err)
	}

	// The child holds its own copy of the write end; closing ours lets
	// the read end see EOF when the process exits.
	_ = writeEnd.Close()

	session := &Session{
		Tag:       tag,
		URL:       url,
		Format:    s.Format,
		ChunkSize: s.Format.ChunkSize(),
		StartedAt: time.Now(),
		cmd:       cmd,
		readEnd:   readEnd,
		writeEnd:  writeEnd,
		done:      make(chan struct{}),
	}

	go func() {
		_ = cmd.Wait()
		close(session.done)
	}()

	s.sessions[tag] = session
	logging.LogStream(tag, "started")
	return nil
}

// Poll performs one non-blocking read of up to maxBytes (capped to one
// chunk) from the session's pipe.
//
// A dead process or a zero-length read ends the session: it is torn down
// and PollEOF is returned. When nothing is ready within the 10ms wait
// window, PollNoData is returned. Polling an unknown tag yields PollEOF.
func (s *Supervisor) Poll(tag string, maxBytes int) PollResult {
	s.mu.Lock()
	session, ok := s.sessions[tag]
	s.mu.Unlock()

	if !ok {
		return PollResult{Status: PollEOF}
	}

	// A session whose process already exited is torn down regardless of
	// pipe state.
	if session.exited() {
		logging.Warn("Decoder exited unexpectedly", zap.String("tag", tag))
		s.Stop(tag)
		return PollResult{Status: PollEOF}
	}

	if maxBytes > session.ChunkSize {
		maxBytes = session.ChunkSize
	}

	buf := make([]byte, maxBytes)
	_ = session.readEnd.SetReadDeadline(time.Now().Add(PollWait))
	n, err := session.readEnd.Read(buf)

	switch {
	case err == nil && n > 0:
		return PollResult{Status: PollData, Data: buf[:n]}

	case os.IsTimeout(err):
		return PollResult{Status: PollNoData}

	case err == io.EOF || (err == nil && n == 0):
		// Clean end of stream: the process closed its output.
		logging.LogStream(tag, "eof")
		s.Stop(tag)
		return PollResult{Status: PollEOF}

	default:
		logging.Error("Pipe read failed", zap.String("tag", tag), zap.Error(err))
		s.Stop(tag)
		return PollResult{Status: PollEOF}
	}
}

// Stop terminates the session for the tag and releases its resources.
//
// Idempotent: stopping an unknown or already-stopped tag is a no-op. The
// process gets SIGTERM, then SIGKILL after TerminateWait; both pipe ends
// are closed with already-closed errors ignored.
func (s *Supervisor) Stop(tag string) {
	s.mu.Lock()
	session, ok := s.sessions[tag]
	if ok {
		delete(s.sessions, tag)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	s.terminate(session)
	_ = session.readEnd.Close()
	_ = session.writeEnd.Close()
	logging.LogStream(tag, "stopped")
}

// StopAll stops every running session. Used at shutdown.
func (s *Supervisor) StopAll() {
	for _, tag := range s.Running() {
		s.Stop(tag)
	}
}

// terminate asks the process to exit, escalating to SIGKILL after the
// grace period, and waits for the exit to be reaped.
func (s *Supervisor) terminate(session *Session) {
	if session.exited() {
		return
	}

	// Signal errors mean the process is already gone; the waiter will
	// close done either way.
	_ = session.cmd.Process.Signal(syscall.SIGTERM)

	select {
	case <-session.done:
	case <-time.After(TerminateWait):
		logging.Warn("Decoder ignored SIGTERM, killing", zap.String("tag", session.Tag))
		_ = session.cmd.Process.Kill()
		<-session.done
	}
}

// command builds the decode command for a stream URL.
func (s *Supervisor) command(url string) *exec.Cmd {
	if s.CommandFunc != nil {
		return s.CommandFunc(url)
	}
	// -re reads the input at its native rate so live output pacing is
	// driven by the source.
	return exec.Command(s.DecoderPath,
		"-hide_banner",
		"-re",
		"-i", url,
		"-f", fmt.Sprintf("s%dle", s.Format.BitDepth),
		"-ac", strconv.Itoa(s.Format.Channels),
		"-ar", strconv.Itoa(s.Format.SampleRate),
		"pipe:1",
	)
}
