package instance

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"syscall"
)

// Lock is a single-instance guard. Preview generation and submission
// both rewrite the preview artifact, so only one run may hold the lock
// at a time.
type Lock struct {
	lockFile *os.File
	lockPath string
}

// NewLock creates a lock rooted in the application config directory
func NewLock() (*Lock, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	lockDir := filepath.Join(homeDir, ".temposync")
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	return &Lock{
		lockPath: filepath.Join(lockDir, "temposync.lock"),
	}, nil
}

// TryLock attempts to acquire the single instance lock
func (l *Lock) TryLock() error {
	lockFile, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return l.checkExistingLock()
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		lockFile.Close()
		os.Remove(l.lockPath)
		if err == syscall.EWOULDBLOCK {
			return fmt.Errorf("another temposync run is already in progress")
		}
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}

	if _, err := fmt.Fprintf(lockFile, "%d\n", os.Getpid()); err != nil {
		lockFile.Close()
		os.Remove(l.lockPath)
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	l.lockFile = lockFile
	return nil
}

// checkExistingLock checks whether an existing lock file belongs to a
// live process, cleaning up a stale one.
func (l *Lock) checkExistingLock() error {
	existingFile, err := os.OpenFile(l.lockPath, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return l.TryLock()
		}
		return fmt.Errorf("failed to open existing lock file: %w", err)
	}
	defer existingFile.Close()

	if err := syscall.Flock(int(existingFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if err == syscall.EWOULDBLOCK {
			return fmt.Errorf("another temposync run is already in progress")
		}
		return fmt.Errorf("failed to check existing lock: %w", err)
	}

	// We got the lock, so the previous process died without cleanup.
	var oldPID int
	fmt.Fscanf(existingFile, "%d", &oldPID)

	syscall.Flock(int(existingFile.Fd()), syscall.LOCK_UN)
	existingFile.Close()
	os.Remove(l.lockPath)

	log.Printf("Warning: found stale lock file from PID %d, cleaning up", oldPID)
	return l.TryLock()
}

// Release releases the single instance lock
func (l *Lock) Release() error {
	if l.lockFile == nil {
		return nil
	}

	if err := syscall.Flock(int(l.lockFile.Fd()), syscall.LOCK_UN); err != nil {
		log.Printf("Warning: failed to release file lock: %v", err)
	}
	if err := l.lockFile.Close(); err != nil {
		log.Printf("Warning: failed to close lock file: %v", err)
	}
	if err := os.Remove(l.lockPath); err != nil {
		log.Printf("Warning: failed to remove lock file: %v", err)
	}

	l.lockFile = nil
	return nil
}
