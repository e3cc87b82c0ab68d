package ratelimit

import (
	"testing"
	"time"
)

func TestEleventhCallRejected(t *testing.T) {
	l := New(10, 60*time.Second)

	for i := 1; i <= 10; i++ {
		if !l.Allow(1) {
			t.Fatalf("call %d rejected, want allowed", i)
		}
	}
	if l.Allow(1) {
		t.Error("11th call within the window must be rejected")
	}
}

func TestWindowElapsesAndResets(t *testing.T) {
	l := New(10, 60*time.Second)
	now := time.Unix(1000, 0)
	l.nowFunc = func() time.Time { return now }

	for i := 0; i < 11; i++ {
		l.Allow(1)
	}
	if l.Allow(1) {
		t.Fatal("expected identity to be over limit")
	}

	// Once every prior timestamp has aged out, the first call is allowed.
	now = now.Add(61 * time.Second)
	if !l.Allow(1) {
		t.Error("first call after the window fully elapsed must be allowed")
	}
}

func TestRejectedCallsStillConsumeQuota(t *testing.T) {
	l := New(10, 60*time.Second)
	now := time.Unix(1000, 0)
	l.nowFunc = func() time.Time { return now }

	for i := 0; i < 15; i++ {
		l.Allow(1)
	}

	// 30s later the first 10 hits are still inside the window together
	// with the 5 rejected ones, so the user remains over limit.
	now = now.Add(30 * time.Second)
	if l.Allow(1) {
		t.Error("rejected calls must extend the over-limit state")
	}
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l := New(10, 60*time.Second)

	for i := 0; i < 11; i++ {
		l.Allow(1)
	}
	if !l.Allow(2) {
		t.Error("a different identity must not be affected")
	}
}
