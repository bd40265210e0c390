package errorlog

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/live627/elkarte.net/internal/request"
)

// Recovery ends every request that raised a fatal error, and turns any other
// panic into a LevelError runtime error first.
func (r *Reporter) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			abort, ok := v.(*Abort)
			if !ok {
				file, line := panicSite()
				abort = r.handlePanic(request.FromGin(c), v, file, line)
			}

			if !c.Writer.Written() {
				c.String(abort.Status, abort.Message)
			}
			c.Abort()
		}()
		c.Next()
	}
}

func (r *Reporter) handlePanic(rc *request.Context, v interface{}, file string, line int) (abort *Abort) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if a, ok := p.(*Abort); ok {
			abort = a
			return
		}
		r.logger.Errorw("Panic while handling panic", "panic", p)
		abort = &Abort{Message: http.StatusText(http.StatusInternalServerError), Status: http.StatusInternalServerError}
	}()

	r.HandleError(rc, LevelError, fmt.Sprint(v), file, line)

	// Only reached for panics whose site could not be resolved.
	return &Abort{Message: http.StatusText(http.StatusInternalServerError), Status: http.StatusInternalServerError}
}

// panicSite returns the first frame outside the runtime below the panic.
func panicSite() (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	panicking := false
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			panicking = true
		case panicking && !strings.HasPrefix(frame.Function, "runtime."):
			return frame.File, frame.Line
		}
		if !more {
			return "Unknown", 0
		}
	}
}
