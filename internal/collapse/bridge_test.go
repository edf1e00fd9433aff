package collapse

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/universal-console/collapse/internal/errors"
)

func TestBridgeDeliver(t *testing.T) {
	var got []float64
	b := newBridge("alpha", func(h float64) { got = append(got, h) }, quietLogger())
	current := Fingerprint("alpha")

	if !b.Deliver(Report{Height: 10, Digest: current, Seq: 1}) {
		t.Fatal("expected first report to be accepted")
	}
	if b.Deliver(Report{Height: 20, Digest: Fingerprint("beta"), Seq: 2}) {
		t.Error("report for other children was accepted")
	}
	if b.Deliver(Report{Height: 30, Digest: current, Seq: 1}) {
		t.Error("out of order report was accepted")
	}
	if b.Deliver(Report{Height: math.NaN(), Digest: current, Seq: 3}) {
		t.Error("NaN report was accepted")
	}
	if b.Deliver(Report{Height: -1, Digest: current, Seq: 4}) {
		t.Error("negative report was accepted")
	}
	if !b.Deliver(Report{Height: 40, Digest: current}) {
		t.Error("unsequenced report was rejected")
	}

	diff(t, []float64{10, 40}, got)
	if b.Dropped() != 4 {
		t.Errorf("Dropped() = %d, want 4", b.Dropped())
	}
}

func TestBridgeLastDrop(t *testing.T) {
	b := newBridge("alpha", func(float64) {}, quietLogger())
	if b.LastDrop() != nil {
		t.Fatalf("LastDrop() = %v before any report", b.LastDrop())
	}

	b.Deliver(Report{Height: 10, Digest: Fingerprint("beta"), Seq: 1})

	var ctxErr *errors.ContextualError
	if !stderrors.As(b.LastDrop(), &ctxErr) {
		t.Fatalf("LastDrop() = %v, want a contextual error", b.LastDrop())
	}
	if ctxErr.Type != errors.ErrorTypeMeasurement || ctxErr.Message != "report dropped: superseded content" {
		t.Errorf("got %s error %q", ctxErr.Type, ctxErr.Message)
	}
	if ctxErr.Context["seq"] != uint64(1) {
		t.Errorf("context = %v", ctxErr.Context)
	}
}

func TestBridgeRetarget(t *testing.T) {
	var got []float64
	b := newBridge("alpha", func(h float64) { got = append(got, h) }, quietLogger())
	b.retarget("beta")

	if b.Deliver(Report{Height: 10, Digest: Fingerprint("alpha")}) {
		t.Error("superseded report was accepted")
	}
	if !b.Deliver(Report{Height: 12, Digest: Fingerprint("beta")}) {
		t.Error("current report was rejected")
	}
	diff(t, []float64{12}, got)
}
