//go:build !(rp2040 || rp2350)

package logx

import (
	"context"
	"io"

	"github.com/golang/glog"
)

type glogBackend struct{}

func (glogBackend) Emit(lv Level, line []byte) {
	switch lv {
	case LevelDebug:
		glog.V(1).Info(string(line))
	case LevelWarn:
		glog.Warning(string(line))
	case LevelError:
		glog.Error(string(line))
	default:
		glog.Info(string(line))
	}
}

func defaultBackend() Backend { return glogBackend{} }

// Start is a no-op on host builds: glog owns its own output.
func Start(ctx context.Context, console io.Writer) {}

// Flush pushes buffered glog output.
func Flush() { glog.Flush() }
