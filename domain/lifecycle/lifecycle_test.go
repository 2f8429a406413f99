package lifecycle

import (
	"errors"
	"testing"

	"github.com/soocke/rustlens/domain/detection"
)

type fakeBackend struct {
	acquired map[string]bool
	freed    []string
	fail     bool
}

func newFakeBackend() *fakeBackend { return &fakeBackend{acquired: map[string]bool{}} }

func (b *fakeBackend) Acquire(id string, sel *detection.Selection) (any, error) {
	if b.fail {
		return nil, errors.New("decode failed")
	}
	b.acquired[id] = true
	return sel.Name, nil
}

func (b *fakeBackend) Free(id string, res any) {
	if !b.acquired[id] {
		panic("free of unknown resource " + id)
	}
	delete(b.acquired, id)
	b.freed = append(b.freed, id)
}

func sel(name string) *detection.Selection {
	return &detection.Selection{Name: name, Data: []byte(name)}
}

func TestLifecycle_SequentialSelectKeepsOneLive(t *testing.T) {
	b := newFakeBackend()
	l := New(b, nil, Hooks{})
	const n = 5
	var handles []*Handle
	for i := 0; i < n; i++ {
		h, err := l.Select(sel(string(rune('a' + i))))
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		handles = append(handles, h)
	}
	st := l.Stats()
	if st.Live != 1 || st.Released != n-1 || st.Created != n {
		t.Fatalf("after %d selects: live=%d released=%d created=%d", n, st.Live, st.Released, st.Created)
	}
	if len(b.acquired) != 1 || len(b.freed) != n-1 {
		t.Fatalf("backend: acquired=%d freed=%d", len(b.acquired), len(b.freed))
	}
	for i, h := range handles[:n-1] {
		if !h.Released() || h.Resource() != nil {
			t.Fatalf("handle %d should be released", i)
		}
	}
	if l.Current() != handles[n-1] || handles[n-1].Resource() != "e" {
		t.Fatalf("last handle should be current and resolvable")
	}

	l.Close()
	if l.Live() != 0 || len(b.acquired) != 0 || len(b.freed) != n {
		t.Fatalf("after close: live=%d acquired=%d freed=%d", l.Live(), len(b.acquired), len(b.freed))
	}
}

func TestLifecycle_ReleaseIsIdempotent(t *testing.T) {
	b := newFakeBackend()
	var released []string
	l := New(b, nil, Hooks{OnRelease: func(id string) { released = append(released, id) }})
	h, _ := l.Select(sel("a"))
	l.Release(h)
	l.Release(h)
	l.Release(nil)
	l.Reset()
	l.Close()
	if len(b.freed) != 1 || len(released) != 1 || l.Live() != 0 {
		t.Fatalf("double release: freed=%d hooks=%d live=%d", len(b.freed), len(released), l.Live())
	}
	if l.Current() != nil {
		t.Fatalf("current should be cleared")
	}
}

func TestLifecycle_EmptySelectionRejected(t *testing.T) {
	b := newFakeBackend()
	l := New(b, nil, Hooks{})
	h, _ := l.Select(sel("a"))
	for _, s := range []*detection.Selection{nil, {Name: "empty.png"}} {
		if _, err := l.Select(s); !errors.Is(err, detection.ErrEmptyFile) {
			t.Fatalf("expected ErrEmptyFile, got %v", err)
		}
	}
	if l.Current() != h || h.Released() {
		t.Fatalf("rejected select must not touch the live handle")
	}
}

func TestLifecycle_AcquireFailureLeavesNothingLive(t *testing.T) {
	b := newFakeBackend()
	acquired := 0
	l := New(b, nil, Hooks{OnAcquire: func(string) { acquired++ }})
	if _, err := l.Select(sel("a")); err != nil {
		t.Fatalf("select: %v", err)
	}
	b.fail = true
	if _, err := l.Select(sel("b")); err == nil {
		t.Fatalf("expected acquire error")
	}
	if l.Live() != 0 || l.Current() != nil || acquired != 1 {
		t.Fatalf("live=%d current=%v acquired=%d", l.Live(), l.Current(), acquired)
	}
}

func TestHandle_IDsAreUnique(t *testing.T) {
	l := New(nil, nil, Hooks{})
	a, _ := l.Select(sel("a"))
	b, _ := l.Select(sel("b"))
	if a.ID() == b.ID() || len(a.ID()) <= len("handle:") {
		t.Fatalf("ids: %q %q", a.ID(), b.ID())
	}
}
