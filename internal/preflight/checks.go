package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"slate/internal/config"
)

// MinFreeBytes is the least free space the output filesystem must offer.
// Raw dish images at full sensor resolution run tens of megabytes per run.
const MinFreeBytes = 512 << 20

// CheckBinary verifies that an external tool resolves on PATH.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSerialPort verifies the drive controller device node exists and is
// accessible, without opening it.
func CheckSerialPort(name, port string) Result {
	port = strings.TrimSpace(port)
	if port == "" {
		return Result{Name: name, Detail: "port not configured"}
	}
	info, err := os.Stat(port)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", port)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", port, err)}
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a character device)", port)}
	}
	if err := unix.Access(port, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", port, err)}
	}
	return Result{Name: name, Passed: true, Detail: port}
}

// CheckOutputDir verifies the run output location is usable. A missing
// directory passes when its nearest existing ancestor is writable, since the
// run creates it on demand.
func CheckOutputDir(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "output directory not configured"}
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
		}
		if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	case os.IsNotExist(err):
		ancestor := nearestExisting(path)
		if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
}

// CheckFreeSpace verifies the filesystem backing path has at least min bytes
// available.
func CheckFreeSpace(name, path string, min uint64) Result {
	target := nearestExisting(path)
	var stat unix.Statfs_t
	if err := unix.Statfs(target, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", target, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%d MiB free", free>>20)
	if free < min {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %d MiB", detail, min>>20)}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckGeometry verifies the geometry document parses and validates.
func CheckGeometry(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "geometry file not configured"}
	}
	geometry, err := config.LoadGeometry(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true,
		Detail: fmt.Sprintf("%d dish slots, %d wells", len(geometry.Dishes), geometry.WellCount())}
}

// nearestExisting walks up from path to the closest directory that exists.
func nearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
