// -----------------------------------------------------------------------
// Crash reports - fatal panics are written to a file beside the logs
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// crashDir receives crash-*.log files. Stdout may carry the MCP stream, so
// crash output never goes there.
var crashDir = "logs"

// InstallCrashHandler sets the crash report directory; empty uses the log directory.
func InstallCrashHandler(dir string) {
	if dir == "" {
		dir = logDirectory()
	}
	crashDir = dir
	if err := os.MkdirAll(crashDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to create crash directory: %v\n", err)
	}
}

// WriteCrashFile writes a crash report and returns its path, or "" when the
// report could only be written to stderr.
func WriteCrashFile(panicVal interface{}, stackTrace string) string {
	now := time.Now()
	path := filepath.Join(crashDir, fmt.Sprintf("crash-%s.log", now.Format("2006-01-02T15-04-05")))

	var report strings.Builder
	report.WriteString("=== STOCK-MCP CRASH REPORT ===\n")
	report.WriteString(fmt.Sprintf("Time: %s\nVersion: %s\n\n", now.Format(time.RFC3339), GetFullVersion()))
	report.WriteString(fmt.Sprintf("=== PANIC ===\n%v\n\n", panicVal))
	report.WriteString("=== STACK ===\n" + stackTrace + "\n")
	report.WriteString("=== ALL GOROUTINES ===\n" + allGoroutineStacks() + "\n")

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.WriteString(fmt.Sprintf("=== RUNTIME ===\nGoroutines: %d\nGOOS/GOARCH: %s/%s\nAlloc: %d MB\nSys: %d MB\n",
		runtime.NumGoroutine(), runtime.GOOS, runtime.GOARCH, mem.Alloc/1024/1024, mem.Sys/1024/1024))

	if err := os.WriteFile(path, []byte(report.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to write crash file: %v\n%s", err, report.String())
		return ""
	}
	fmt.Fprintf(os.Stderr, "FATAL: panic %v, report saved to %s\n", panicVal, path)
	return path
}

// allGoroutineStacks grows its buffer until every stack fits, up to 64 MB.
func allGoroutineStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) || len(buf) >= 64*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}

func currentStack() string {
	buf := make([]byte, 8192)
	return string(buf[:runtime.Stack(buf, false)])
}

// RecoverWithCrashFile is deferred at the top of main.
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		WriteCrashFile(r, currentStack())
		os.Exit(1)
	}
}

// SafeGo runs fn in a goroutine; a panic is logged and does not stop the process.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", currentStack()).
					Msg("Recovered from panic in goroutine")
			}
		}()
		fn()
	}()
}
