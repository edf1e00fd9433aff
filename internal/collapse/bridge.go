package collapse

import (
	"golang.org/x/crypto/blake2b"

	"github.com/universal-console/collapse/internal/errors"
	"github.com/universal-console/collapse/internal/logging"
)

// Digest identifies the children a measurement was taken from.
type Digest [blake2b.Size256]byte

// Fingerprint digests rendered children.
func Fingerprint(children string) Digest {
	return Digest(blake2b.Sum256([]byte(children)))
}

// Report is one height measurement delivered by the measurer.
type Report struct {
	Height float64

	// Digest of the children that were measured.
	Digest Digest

	// Seq orders reports. Zero means unsequenced.
	Seq uint64
}

// Bridge is the one-way channel from the measurer into a Collapse. It drops
// reports for superseded children, out-of-order reports and unknown heights.
type Bridge struct {
	digest  Digest
	lastSeq uint64
	sink    func(float64)
	dropped int
	lastErr error
	logger  *logging.Logger
}

func newBridge(children string, sink func(float64), logger *logging.Logger) *Bridge {
	return &Bridge{
		digest: Fingerprint(children),
		sink:   sink,
		logger: logger,
	}
}

// Deliver forwards r when it is current. It returns whether r was accepted.
func (b *Bridge) Deliver(r Report) bool {
	switch {
	case r.Digest != b.digest:
		return b.drop(r, "superseded content")
	case r.Seq != 0 && r.Seq <= b.lastSeq:
		return b.drop(r, "out of order")
	case !known(r.Height):
		return b.drop(r, "unknown height")
	}

	if r.Seq != 0 {
		b.lastSeq = r.Seq
	}
	b.logger.LogHeightReport(r.Height, r.Seq, true, "")
	b.sink(r.Height)
	return true
}

// Digest returns the fingerprint of the children currently expected.
func (b *Bridge) Digest() Digest {
	return b.digest
}

// Dropped counts rejected reports.
func (b *Bridge) Dropped() int {
	return b.dropped
}

// LastDrop describes the most recently rejected report, or nil.
func (b *Bridge) LastDrop() error {
	return b.lastErr
}

func (b *Bridge) drop(r Report, reason string) bool {
	b.dropped++
	b.lastErr = errors.NewMeasurementError("bridge").
		WithLogger(b.logger).
		WithOperation("deliver").
		WithMessage("report dropped: " + reason).
		WithContext("height", r.Height).
		WithContext("seq", r.Seq).
		WithoutStackTrace().
		Build()
	return false
}

// retarget switches the bridge to new children.
func (b *Bridge) retarget(children string) {
	b.digest = Fingerprint(children)
}
