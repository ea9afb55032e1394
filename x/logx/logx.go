// Package logx is a small key/value logger for firmware and host builds.
//
// Lines look like "[ir] datagram bits=0101_0011 len=8". Formatting happens
// into a stack buffer; the platform backend decides where the line goes
// (glog on host, a non-blocking ring drained to the UART on RP2040).
// Never log from an interrupt handler.
package logx

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"irlink-go/x/conv"
	"irlink-go/x/shmring"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Backend receives finished lines (no trailing newline). It must not
// retain line after returning.
type Backend interface {
	Emit(lv Level, line []byte)
}

type Logger struct {
	tag string
	min atomic.Uint32
	out Backend
}

// New returns a logger that writes through the platform default backend.
func New(tag string) *Logger { return NewWith(tag, defaultBackend()) }

// NewWith returns a logger that writes to b.
func NewWith(tag string, b Backend) *Logger {
	l := &Logger{tag: tag, out: b}
	l.min.Store(uint32(LevelInfo))
	return l
}

// With returns a logger sharing the backend and level under another tag.
func (l *Logger) With(tag string) *Logger {
	n := &Logger{tag: tag, out: l.out}
	n.min.Store(l.min.Load())
	return n
}

func (l *Logger) SetLevel(lv Level) { l.min.Store(uint32(lv)) }

func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

func (l *Logger) log(lv Level, msg string, kv []any) {
	if uint32(lv) < l.min.Load() {
		return
	}
	var buf [160]byte
	l.out.Emit(lv, Format(buf[:0], l.tag, msg, kv...))
}

type stringer interface{ String() string }

// Format appends "[tag] msg k=v ..." to dst. An odd trailing key is
// printed with the value "?".
func Format(dst []byte, tag, msg string, kv ...any) []byte {
	if tag != "" {
		dst = append(dst, '[')
		dst = append(dst, tag...)
		dst = append(dst, "] "...)
	}
	dst = append(dst, msg...)
	for i := 0; i < len(kv); i += 2 {
		dst = append(dst, ' ')
		dst = appendValue(dst, kv[i])
		dst = append(dst, '=')
		if i+1 < len(kv) {
			dst = appendValue(dst, kv[i+1])
		} else {
			dst = append(dst, '?')
		}
	}
	return dst
}

func appendValue(dst []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(dst, "nil"...)
	case string:
		return append(dst, x...)
	case []byte:
		return append(dst, x...)
	case bool:
		return conv.AppendBool(dst, x)
	case int:
		return conv.AppendInt(dst, int64(x))
	case int32:
		return conv.AppendInt(dst, int64(x))
	case int64:
		return conv.AppendInt(dst, x)
	case uint:
		return conv.AppendUint(dst, uint64(x))
	case uint8:
		return conv.AppendUint(dst, uint64(x))
	case uint16:
		return conv.AppendUint(dst, uint64(x))
	case uint32:
		return conv.AppendUint(dst, uint64(x))
	case uint64:
		return conv.AppendUint(dst, x)
	case time.Duration:
		dst = conv.AppendInt(dst, int64(x/time.Microsecond))
		return append(dst, "us"...)
	case error:
		return append(dst, x.Error()...)
	case stringer:
		return append(dst, x.String()...)
	default:
		return append(dst, "<?>"...)
	}
}

// RingBackend writes lines into a ring and never blocks. Lines that do
// not fit whole are dropped and counted.
type RingBackend struct {
	R     *shmring.Ring
	Lock  func(func()) // serialises producers; nil when there is only one
	drops atomic.Uint32
}

func (b *RingBackend) Emit(lv Level, line []byte) {
	write := func() {
		if b.R.Space() < len(line)+2 {
			b.drops.Add(1)
			return
		}
		b.R.TryWriteFrom(line)
		b.R.TryWriteFrom([]byte{'\r', '\n'})
	}
	if b.Lock != nil {
		b.Lock(write)
		return
	}
	write()
}

// Drops returns how many lines were refused for lack of space.
func (b *RingBackend) Drops() uint32 { return b.drops.Load() }

// Pump copies ring contents to w until ctx is cancelled.
func Pump(ctx context.Context, r *shmring.Ring, w io.Writer) {
	var buf [64]byte
	for {
		if n := r.TryReadInto(buf[:]); n > 0 {
			_, _ = w.Write(buf[:n])
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-r.Readable():
		}
	}
}
