//go:build unix

package ptysession

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const readBufferSize = 32 * 1024

type sysState struct {
	ptm *os.File
	fd  int
}

var errNotExecutable = errors.New("not an executable file")

// Start allocates a pseudo-terminal, sizes it, and starts path with args with
// stdin, stdout and stderr all attached to the slave side.
//
// A missing or non-executable path fails with *LaunchError before any
// terminal is allocated. Terminal allocation or sizing failures are reported
// as *SessionError, and no process is started. Exec failures are reported
// synchronously by the process start, so the child never runs past a
// failed exec.
func Start(path string, args []string, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	if err := checkExecutable(path); err != nil {
		return nil, &LaunchError{Path: path, Err: err}
	}

	ptm, pts, err := pty.Open()
	if err != nil {
		return nil, &SessionError{Op: "open", Err: err}
	}
	// pts is only needed until the child has it.
	defer pts.Close()

	if err := pty.Setsize(pts, &pty.Winsize{Cols: opts.Size.Cols, Rows: opts.Size.Rows}); err != nil {
		_ = ptm.Close()
		return nil, &SessionError{Op: "setsize", Err: err}
	}
	if !term.IsTerminal(int(pts.Fd())) {
		_ = ptm.Close()
		return nil, &SessionError{Op: "open", Err: fmt.Errorf("%s is not a terminal", pts.Name())}
	}

	cmd := exec.Command(path, args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	cmd.Stdin = pts
	cmd.Stdout = pts
	cmd.Stderr = pts
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0,
	}
	if err := cmd.Start(); err != nil {
		_ = ptm.Close()
		return nil, &LaunchError{Path: path, Err: err}
	}

	// From here on the master is read with raw non-blocking syscalls only.
	fd := int(ptm.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		_ = ptm.Close()
		return nil, &SessionError{Op: "setnonblock", Err: err}
	}

	s := &Session{
		opts: opts,
		cmd:  cmd,
		sys:  sysState{ptm: ptm, fd: fd},
	}
	opts.Logger.Debug("started process", "pid", s.Pid(), "path", path, "size", opts.Size.String())
	return s, nil
}

func checkExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() || fi.Mode().Perm()&0o111 == 0 {
		return errNotExecutable
	}
	return nil
}

// Collect reads the master descriptor until the child has exited and all
// pending output has been drained, then closes the terminal and returns the
// captured bytes. It blocks for as long as the child runs; there is no
// timeout. Collect must be called at most once.
func (s *Session) Collect() ([]byte, error) {
	if s.closed {
		return nil, &SessionError{Op: "read", Err: os.ErrClosed}
	}
	defer s.Close()

	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()

	buf := make([]byte, readBufferSize)
	timeout := int(s.opts.PollInterval.Milliseconds())
	if timeout <= 0 {
		timeout = 1
	}

	for {
		select {
		case err := <-exited:
			s.setExited(err)
			if err := s.drain(buf); err != nil {
				return nil, err
			}
			return s.finish(), nil
		default:
		}

		hangup, err := s.readReady(buf, timeout)
		if err != nil {
			_ = s.cmd.Process.Kill()
			<-exited
			return nil, err
		}
		if hangup {
			// Every slave descriptor is closed; nothing more can arrive.
			s.setExited(<-exited)
			return s.finish(), nil
		}
	}
}

// Close kills and reaps the child if Collect has not already waited for it,
// and releases the master descriptor. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cmd.ProcessState == nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	return s.sys.ptm.Close()
}

// readReady waits up to timeout milliseconds for the master to become
// readable, then performs a single read.
func (s *Session) readReady(buf []byte, timeout int) (hangup bool, err error) {
	fds := []unix.PollFd{{Fd: int32(s.sys.fd), Events: unix.POLLIN}}
	if _, err := unix.Poll(fds, timeout); err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, &SessionError{Op: "poll", Err: err}
	}
	if fds[0].Revents == 0 {
		return false, nil
	}
	_, hangup, err = s.read(buf)
	return hangup, err
}

// drain reads until no data is immediately available.
func (s *Session) drain(buf []byte) error {
	for {
		n, hangup, err := s.read(buf)
		if err != nil {
			return err
		}
		if hangup || n <= 0 {
			return nil
		}
	}
}

// read performs one non-blocking read and appends the result. No data being
// available yet is not an error. EIO (Linux) and a zero-length read (BSD)
// both mean the slave side has been closed.
func (s *Session) read(buf []byte) (n int, hangup bool, err error) {
	n, err = unix.Read(s.sys.fd, buf)
	if n > 0 {
		s.output.Write(buf[:n])
	}
	switch {
	case err == nil:
		return n, n == 0, nil
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return 0, false, nil
	case errors.Is(err, unix.EIO):
		return 0, true, nil
	default:
		return 0, false, &SessionError{Op: "read", Err: err}
	}
}

func (s *Session) setExited(err error) {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.exitCode = 0
	case errors.As(err, &exitErr):
		s.exitCode = exitErr.ExitCode()
	default:
		s.exitCode = -1
		s.opts.Logger.Warn("failed to wait for process", "pid", s.Pid(), "error", err)
	}
}

func (s *Session) finish() []byte {
	s.opts.Logger.Debug("read output", "pid", s.Pid(), "bytes", s.output.Len(), "exitCode", s.exitCode)
	return s.output.Bytes()
}
