package descriptor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// FS is the filesystem boundary the synthesizer reads certificate material through.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
}

// OSFS implements FS on the host filesystem.
type OSFS struct{}

// Stat implements FS.
func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// ReadFile implements FS.
func (OSFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Remove implements FS.
func (OSFS) Remove(name string) error { return os.Remove(name) }

// exists reports whether name is a regular file (or anything but a directory).
func exists(fsys FS, name string) bool {
	if name == "" {
		return false
	}
	info, err := fsys.Stat(name)
	return err == nil && !info.IsDir()
}

// Copier copies a file this process cannot read into dst with elevated
// privileges, leaving dst readable by the current user with the given mode.
type Copier interface {
	CopyPrivileged(ctx context.Context, src, dst string, mode fs.FileMode) error
}

// CopierFunc adapts a function to the Copier interface.
type CopierFunc func(ctx context.Context, src, dst string, mode fs.FileMode) error

// CopyPrivileged implements Copier.
func (f CopierFunc) CopyPrivileged(ctx context.Context, src, dst string, mode fs.FileMode) error {
	return f(ctx, src, dst, mode)
}

// SudoCopier runs `sudo -n install` directly, without a shell, so that the copy
// is owned by the current user. -n makes sudo fail instead of prompting.
type SudoCopier struct {
	Command string
	Timeout time.Duration
}

// NewSudoCopier returns a SudoCopier with a 10 second timeout.
func NewSudoCopier() *SudoCopier {
	return &SudoCopier{Command: "sudo", Timeout: 10 * time.Second}
}

// CopyPrivileged implements Copier.
func (c *SudoCopier) CopyPrivileged(ctx context.Context, src, dst string, mode fs.FileMode) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := []string{
		"-n", "install",
		"-m", fmt.Sprintf("%04o", mode.Perm()),
		"-o", strconv.Itoa(os.Getuid()),
		"-g", strconv.Itoa(os.Getgid()),
		src, dst,
	}

	//nolint:gosec // G204 - arguments are file paths from configuration, no shell involved
	out, err := exec.CommandContext(ctx, c.Command, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("privileged copy of %s failed: %w: %s", src, err, out)
	}
	return nil
}
