package safe

import (
	"github.com/TOPBARD/Connect-Hub/logger"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// SafeGo starts a new goroutine that recovers from panic,
// so that panics in live-channel handlers don't crash the server.
func SafeGo(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[SafeGo] %+v", errs.ErrPanic(r))
			}
		}()
		f()
	}()
}

// Recover is the deferred form for goroutines that are already running.
func Recover(where string) {
	if r := recover(); r != nil {
		logger.Errorf("[%s] %+v", where, errs.ErrPanic(r))
	}
}
