package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// CrashLogDir is the directory where crash files are written
var CrashLogDir = "./logs"

// InstallCrashHandler sets the crash directory and makes sure it exists
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		CrashLogDir = logDir
	}
	if err := os.MkdirAll(CrashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to create log directory: %v\n", err)
	}
}

// WriteCrashFile writes a crash report and returns its path, or "" if the file could not be written
func WriteCrashFile(panicVal interface{}, stackTrace string) string {
	now := time.Now()
	crashPath := filepath.Join(CrashLogDir, fmt.Sprintf("crash-%s.log", now.Format("2006-01-02T15-04-05")))

	var report bytes.Buffer
	report.WriteString("=== SPENDSENSE CRASH REPORT ===\n")
	fmt.Fprintf(&report, "Time: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&report, "Version: %s\n\n", GetFullVersion())

	report.WriteString("=== PANIC VALUE ===\n")
	fmt.Fprintf(&report, "%v\n\n", panicVal)

	report.WriteString("=== STACK TRACE ===\n")
	report.WriteString(stackTrace)
	report.WriteString("\n")

	report.WriteString("=== SYSTEM INFO ===\n")
	fmt.Fprintf(&report, "NumGoroutine: %d\n", runtime.NumGoroutine())
	fmt.Fprintf(&report, "GOOS/GOARCH: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	fmt.Fprintf(&report, "Alloc: %d MB\n", memStats.Alloc/1024/1024)
	fmt.Fprintf(&report, "NumGC: %d\n", memStats.NumGC)
	report.WriteString("=== END CRASH REPORT ===\n")

	if err := os.WriteFile(crashPath, report.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to write crash file: %v\n%s", err, report.String())
		return ""
	}

	fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - Report saved to: %s !!!\n", crashPath)
	fmt.Fprintf(os.Stderr, "Panic: %v\n", panicVal)
	return crashPath
}

// RecoverWithCrashFile is a deferred recovery for main that writes a crash file and exits.
// Usage: defer common.RecoverWithCrashFile()
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		WriteCrashFile(r, GetStackTrace())
		os.Exit(1)
	}
}
