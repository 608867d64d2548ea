package log

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// MultiWriter fans log output out to several appenders. Unlike
// io.MultiWriter it keeps writing after one appender fails and reports
// the last error.
type MultiWriter struct {
	writers []io.Writer
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		if _, e := w.Write(p); e != nil {
			err = e
		}
	}
	return len(p), err
}

// Add appends an arbitrary writer.
func (m *MultiWriter) Add(w io.Writer) *MultiWriter {
	m.writers = append(m.writers, w)
	return m
}

// AddFile appends a rotating file appender.
func (m *MultiWriter) AddFile(opt FileOutput) *MultiWriter {
	m.writers = append(m.writers, &lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    opt.MaxSize,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAge,
		Compress:   opt.Compress,
	})
	return m
}
