package safe

import (
	"testing"
	"time"
)

func TestSafeGoRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	SafeGo(func() {
		defer close(done)
		panic("boom")
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}
}

func TestSafeGoRunsFunction(t *testing.T) {
	ran := make(chan struct{})
	SafeGo(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("function never ran")
	}
}

func TestRecoverContainsPanic(t *testing.T) {
	func() {
		defer Recover("test")
		panic("boom")
	}()
	// Reaching here means the panic was contained.
}
