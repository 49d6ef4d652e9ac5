package pokedex

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const logFilename = "pokedex.log"

// logger is the package-wide logger. It discards everything until
// startLogging has run, so library-style use of this package stays quiet.
var logger = zerolog.Nop()

// syncWriter forces every log entry onto the disk immediately. Used in
// unbuffered mode (POKEDEX_UNBUFFERED=1).
type syncWriter struct {
	file *os.File
}

func (w syncWriter) Write(p []byte) (n int, err error) {
	n, err = w.file.Write(p)
	if err == nil {
		err = w.file.Sync()
	}
	return
}

// startLogging sets up the logging: human-readable output on stderr plus a
// log file in the data dir. The file is size-rotated, except in unbuffered
// mode where entries are synced to disk one by one instead.
func startLogging(path string, config *Config) io.Closer {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	writers := []io.Writer{console}
	var closer io.Closer
	if config.Unbuffered {
		logfile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err == nil {
			writers = append(writers, syncWriter{logfile})
			closer = logfile
		}
	} else {
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    5, // MB
			MaxBackups: 2,
			MaxAge:     28, // days
		}
		writers = append(writers, rotated)
		closer = rotated
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str("service", "pokedex").
		Logger()
	if closer == nil {
		logger.Warn().Str("path", path).Msg("could not open log file, logging to console only")
		return io.NopCloser(nil)
	}
	return closer
}
