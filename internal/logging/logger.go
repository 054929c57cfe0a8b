package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger struct {
	// The level at which this logger logs. Any log messages intended for a higher
	// (more verbose) log level are ignored. Accessed atomically, since
	// Configure may re-level a logger that is in use.
	level int32

	// Tag used to filter and classify log messages. Usually the pipeline stage.
	Tag string

	// Destination, shared by all derived loggers.
	*sink
}

type sink struct {
	out io.Writer

	// Mutex to prevent messages from different goroutines from interleaving.
	mu sync.Mutex
}

// Write to stderr by default.
var DefaultLogger = newLogger(defaultLevel, "", &sink{out: os.Stderr})

func newLogger(level Level, tag string, s *sink) *Logger {
	return &Logger{level: int32(level), Tag: tag, sink: s}
}

// NewLogger returns a root logger writing to out. Mostly useful in tests.
func NewLogger(out io.Writer, level Level) *Logger {
	return newLogger(level, "", &sink{out: out})
}

// Override the destination for this logger and every logger derived from it.
func (log *Logger) SetDestination(out io.Writer) {
	log.mu.Lock()
	log.out = out
	log.mu.Unlock()
}

// Derive a new logger with the given tag. Look up the level based on the tag.
func (log *Logger) WithTag(tag string) *Logger {
	l := newLogger(determineLevel(tag, log.Level()), tag, log.sink)
	if log == DefaultLogger {
		register(l)
	}
	return l
}

// Derive a new logger with the given default level. This can still be overridden at
// runtime.
func (log *Logger) WithDefaultLevel(level Level) *Logger {
	return newLogger(determineLevel(log.Tag, level), log.Tag, log.sink)
}

// Level returns the current level of this logger.
func (log *Logger) Level() Level {
	return Level(atomic.LoadInt32(&log.level))
}

// SetLevel changes the level of this logger only.
func (log *Logger) SetLevel(level Level) {
	atomic.StoreInt32(&log.level, int32(level))
}

// Wrapper for []byte that implements io.Writer. Simpler and cheaper than
// bytes.Buffer.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) writeByte(c byte) {
	*b = append(*b, c)
}

// A global buffer pool, shared across all loggers. Initial capacity is 256 to
// accommodate *most* log lines.
var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 0, 256)
	},
}

// Log a message at the given level. Include the file and line number from
// 'calldepth' steps up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level() {
		// Message is too verbose for this logger.
		return
	}

	// Grab an empty buffer from the pool.
	buf := bufPool.Get().(buffer)
	// When we're done, reset the buffer and return it to the pool.
	defer func() { bufPool.Put(buf[:0]) }()

	// Write the current timestamp.
	buf = time.Now().AppendFormat(buf, timestampFormat)

	// Write level and tag.
	buf.writeByte(' ')
	buf = append(buf, level.color().Sprintf("%-6s", level)...)
	fmt.Fprintf(&buf, " %s", log.Tag)

	// Get the caller of Error()/High()/Low()/etc.
	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}

	// Write file and line number.
	fmt.Fprintf(&buf, "[%s:%d] ", filepath.Base(file), line)

	// Write formatted log message.
	fmt.Fprintf(&buf, format, a...)

	// Append newline if necessary.
	if n := len(format); n == 0 || format[n-1] != '\n' {
		buf.writeByte('\n')
	}

	// Lock before writing to avoid interleaving of log messages.
	log.mu.Lock()
	out := log.out
	_, err := out.Write(buf)
	log.mu.Unlock()
	if err != nil {
		panic(fmt.Sprintf("Failed to log to %v: %v", out, err))
	}
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) High(format string, a ...interface{}) {
	log.Log(High, 1, format, a...)
}

func (log *Logger) Medium(format string, a ...interface{}) {
	log.Log(Medium, 1, format, a...)
}

func (log *Logger) Low(format string, a ...interface{}) {
	log.Log(Low, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}

// Enabled reports whether messages at the given level would be written.
func (log *Logger) Enabled(level Level) bool {
	return level <= log.Level()
}
