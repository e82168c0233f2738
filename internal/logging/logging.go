// Package logging configures the process-wide structured logger, writing simultaneously to the
// console and to a rotating log file, with per-component level filtering so that chatty transport
// and database libraries stay out of the console by default while still being captured to file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/transcendence/pongserv/config"
)

// componentConsoleLevels/componentFileLevels mirror the console/file split the original server
// used for its network, TLS, and database layers: quiet on the console, verbose to file. A
// component absent from a map uses the base Trace level on that sink.
var componentConsoleLevels = map[string]zerolog.Level{
	"transport":  zerolog.WarnLevel,
	"tls":        zerolog.WarnLevel,
	"store":      zerolog.WarnLevel,
	"matchmaker": zerolog.WarnLevel,
}

var componentFileLevels = map[string]zerolog.Level{
	"transport":  zerolog.DebugLevel,
	"tls":        zerolog.DebugLevel,
	"store":      zerolog.DebugLevel,
	"matchmaker": zerolog.DebugLevel,
}

// Logging holds the two sinks so per-component loggers can be derived with their own level floor.
type Logging struct {
	console io.Writer
	file    *rotatingWriter
}

// Setup builds the console and rotating-file sinks. Use Base for the top-level logger, and
// Component to get a logger scoped (and level-filtered) to a subsystem.
func Setup(logFolder string, channel config.ConsoleChannel) (*Logging, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	file, err := newRotatingWriter(logFolder)
	if err != nil {
		return nil, err
	}
	return &Logging{console: consoleWriter(channel), file: file}, nil
}

// Base returns the top-level logger, unfiltered beyond the global level.
func (l *Logging) Base() zerolog.Logger {
	return zerolog.New(zerolog.MultiLevelWriter(l.console, l.file)).With().Timestamp().Logger()
}

// Component returns a logger tagged with name, with console output held to Warn (Debug to file)
// for the subsystems known to be chatty, matching componentConsoleLevels/componentFileLevels.
func (l *Logging) Component(name string) zerolog.Logger {
	consoleLevel, ok := componentConsoleLevels[name]
	if !ok {
		consoleLevel = zerolog.TraceLevel
	}
	fileLevel, ok := componentFileLevels[name]
	if !ok {
		fileLevel = zerolog.TraceLevel
	}
	writer := zerolog.MultiLevelWriter(
		levelFilterWriter{w: l.console, min: consoleLevel},
		levelFilterWriter{w: l.file, min: fileLevel},
	)
	return zerolog.New(writer).With().Timestamp().Str("component", name).Logger()
}

func consoleWriter(channel config.ConsoleChannel) io.Writer {
	out := os.Stdout
	if channel == config.ConsoleChannelErr {
		out = os.Stderr
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

// levelFilterWriter implements zerolog.LevelWriter, dropping events below min on this one sink
// while leaving the logger's own global level (and other sinks) unaffected.
type levelFilterWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw levelFilterWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelFilterWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}

// rotatingWriter caps each log file at maxLines lines and keeps the most recent maxFiles files,
// rotating the way the original server's file-rotation middleware did (no compression). Write is
// called concurrently from every connection-handling goroutine's logger, so mu guards the file
// handle and line count.
type rotatingWriter struct {
	folder   string
	maxLines int
	maxFiles int

	mu        sync.Mutex
	current   *os.File
	lineCount int
}

const (
	rotatorMaxLines = 4000
	rotatorMaxFiles = 10
)

func newRotatingWriter(logFolder string) (*rotatingWriter, error) {
	if err := os.MkdirAll(logFolder, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log folder: %w", err)
	}
	rw := &rotatingWriter{folder: logFolder, maxLines: rotatorMaxLines, maxFiles: rotatorMaxFiles}
	if err := rw.openNewFile(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *rotatingWriter) openNewFile() error {
	name := filepath.Join(rw.folder, time.Now().UTC().Format("20060102T150405.000000000Z")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open log file: %w", err)
	}
	if rw.current != nil {
		rw.current.Close()
	}
	rw.current = f
	rw.lineCount = 0
	rw.pruneOldFiles()
	return nil
}

func (rw *rotatingWriter) pruneOldFiles() {
	entries, err := os.ReadDir(rw.folder)
	if err != nil {
		return
	}
	var logs []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".log" {
			logs = append(logs, filepath.Join(rw.folder, e.Name()))
		}
	}
	if len(logs) <= rw.maxFiles {
		return
	}
	for _, stale := range logs[:len(logs)-rw.maxFiles] {
		os.Remove(stale)
	}
}

func (rw *rotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	n, err := rw.current.Write(p)
	if err != nil {
		return n, err
	}
	for _, b := range p {
		if b == '\n' {
			rw.lineCount++
		}
	}
	if rw.lineCount >= rw.maxLines {
		if rerr := rw.openNewFile(); rerr != nil {
			return n, rerr
		}
	}
	return n, nil
}
