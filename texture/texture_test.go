// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/canvas2d/backend"
	"github.com/gogpu/canvas2d/recording"
)

type mockTexture struct {
	w, h      int
	data      []byte
	updates   int
	destroyed bool
}

func (t *mockTexture) Width() int  { return t.w }
func (t *mockTexture) Height() int { return t.h }
func (t *mockTexture) Destroy()    { t.destroyed = true }
func (t *mockTexture) UpdateData(data []byte) error {
	t.updates++
	t.data = append(t.data[:0], data...)
	return nil
}

type mockCreator struct {
	created []*mockTexture
	err     error
}

func (c *mockCreator) NewTextureFromRGBA(w, h int, data []byte) (gpucontext.Texture, error) {
	if c.err != nil {
		return nil, c.err
	}
	t := &mockTexture{w: w, h: h, data: append([]byte(nil), data...)}
	c.created = append(c.created, t)
	return t, nil
}

func redList(t *testing.T, w, h int) *recording.DisplayList {
	t.Helper()
	r := recording.NewRecorder()
	if !r.BeginRecording(w, h) {
		t.Fatalf("BeginRecording(%d, %d) failed", w, h)
	}
	r.FillRect(backend.R(0, 0, float64(w), float64(h)), backend.Fill(gg.RGBA{R: 1, A: 1}))
	return r.EndRecording()
}

func TestRegistryRefCounting(t *testing.T) {
	var released []int
	reg := NewRegistry(WithReleaseFunc(func(i *Info) { released = append(released, i.ID()) }))

	a := reg.GetOrCreate(1)
	b := reg.GetOrCreate(1)
	if a != b {
		t.Fatal("GetOrCreate(1) returned different records for a live id")
	}
	if a.Refs() != 2 {
		t.Errorf("Refs() = %d, want 2", a.Refs())
	}

	a.Release()
	if reg.Len() != 1 || len(released) != 0 {
		t.Fatalf("entry removed before the last release")
	}
	b.Release()
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after last release, want 0", reg.Len())
	}
	if len(released) != 1 || released[0] != 1 {
		t.Errorf("release hook calls = %v, want [1]", released)
	}

	c := reg.GetOrCreate(1)
	if c == a {
		t.Error("GetOrCreate after teardown should create a new record")
	}
}

func TestRegistryRemoveKeepsOwners(t *testing.T) {
	reg := NewRegistry()
	a := reg.GetOrCreate(4)
	reg.Remove(4)
	if _, ok := reg.Lookup(4); ok {
		t.Fatal("Lookup should miss after Remove")
	}
	b := reg.GetOrCreate(4)
	if a == b {
		t.Error("GetOrCreate after Remove should not return the removed record")
	}
	a.Release()
	if got, ok := reg.Lookup(4); !ok || got != b {
		t.Error("releasing a removed record must not drop the new entry")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				reg.GetOrCreate(i % 3).Release()
			}
		}()
	}
	wg.Wait()
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0 once every reference is released", reg.Len())
	}
}

func TestReplayAndReadPixels(t *testing.T) {
	info := NewRegistry().GetOrCreate(1)
	if _, err := info.ReadPixels(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("ReadPixels before replay error = %v, want ErrNoFrame", err)
	}

	list := redList(t, 8, 4)
	info.MarkScheduled(list.Seq())
	if info.Pending() != 1 || info.LastScheduled() != list.Seq() {
		t.Errorf("Pending() = %d LastScheduled() = %d", info.Pending(), info.LastScheduled())
	}
	if err := info.ReplayInto(list); err != nil {
		t.Fatalf("ReplayInto: %v", err)
	}
	if info.Pending() != 0 {
		t.Errorf("Pending() = %d after replay, want 0", info.Pending())
	}
	if info.HandleSeq() != list.Seq() || !info.HasNewerFrame() {
		t.Error("replay should advance the handle sequence and flag a newer frame")
	}

	img, err := info.ReadPixels()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if c := img.NRGBAAt(7, 3); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v, want red", c)
	}
}

func TestDisplayTextureUploadsNewFrames(t *testing.T) {
	creator := &mockCreator{}
	up := NewUploader(creator, gputypes.TextureFormatUndefined)
	info := NewRegistry().GetOrCreate(2)

	if _, ready := info.DisplayTexture(up); ready {
		t.Fatal("texture ready before any replay")
	}
	first := redList(t, 4, 4)
	info.MarkScheduled(first.Seq())
	if err := info.ReplayInto(first); err != nil {
		t.Fatal(err)
	}
	tex, ready := info.DisplayTexture(up)
	if !ready || tex == nil {
		t.Fatal("texture not ready after replay")
	}
	if len(creator.created) != 1 || info.DrawingSeq() != first.Seq() {
		t.Errorf("created %d textures, drawing seq %d", len(creator.created), info.DrawingSeq())
	}

	// No newer frame: no upload.
	if _, ready := info.DisplayTexture(up); !ready {
		t.Error("texture should stay ready")
	}
	if creator.created[0].updates != 0 {
		t.Error("texture updated without a newer frame")
	}

	second := redList(t, 4, 4)
	info.MarkScheduled(second.Seq())
	if err := info.ReplayInto(second); err != nil {
		t.Fatal(err)
	}
	info.DisplayTexture(up)
	if creator.created[0].updates != 1 || len(creator.created) != 1 {
		t.Errorf("same-size frame should update in place: updates=%d created=%d",
			creator.created[0].updates, len(creator.created))
	}
	if info.DrawingSeq() != second.Seq() {
		t.Errorf("DrawingSeq() = %d, want %d", info.DrawingSeq(), second.Seq())
	}

	third := redList(t, 6, 6)
	info.MarkScheduled(third.Seq())
	if err := info.ReplayInto(third); err != nil {
		t.Fatal(err)
	}
	info.DisplayTexture(up)
	if len(creator.created) != 2 || !creator.created[0].destroyed {
		t.Error("resize should create a new texture and destroy the old one")
	}
}

func TestDisplayTextureUploadFailureKeepsPending(t *testing.T) {
	creator := &mockCreator{err: errors.New("device lost")}
	up := NewUploader(creator, gputypes.TextureFormatRGBA8Unorm)
	info := NewRegistry().GetOrCreate(3)

	list := redList(t, 2, 2)
	info.MarkScheduled(list.Seq())
	if err := info.ReplayInto(list); err != nil {
		t.Fatal(err)
	}
	if _, ready := info.DisplayTexture(up); ready {
		t.Error("failed upload must not report a ready texture")
	}
	if !info.HasNewerFrame() {
		t.Error("failed upload should leave the frame pending for retry")
	}

	creator.err = nil
	if _, ready := info.DisplayTexture(up); !ready {
		t.Error("retry after recovery should succeed")
	}
}

func TestReleaseHandleRefusesReplay(t *testing.T) {
	info := NewRegistry().GetOrCreate(5)
	info.ReleaseHandle()
	list := redList(t, 2, 2)
	info.MarkScheduled(list.Seq())
	if err := info.ReplayInto(list); !errors.Is(err, ErrReleased) {
		t.Errorf("ReplayInto after release error = %v, want ErrReleased", err)
	}
	if list.Replayed() {
		t.Error("list should not be replayed into a released handle")
	}
	if _, err := info.ReadPixels(); !errors.Is(err, ErrReleased) {
		t.Errorf("ReadPixels after release error = %v, want ErrReleased", err)
	}
}

func TestUploaderFormats(t *testing.T) {
	tests := []struct {
		name    string
		format  gputypes.TextureFormat
		want    []byte
		wantErr error
	}{
		{"rgba", gputypes.TextureFormatRGBA8Unorm, []byte{1, 2, 3, 4}, nil},
		{"undefined means rgba", gputypes.TextureFormatUndefined, []byte{1, 2, 3, 4}, nil},
		{"bgra swizzles", gputypes.TextureFormatBGRA8Unorm, []byte{3, 2, 1, 4}, nil},
		{"float unsupported", gputypes.TextureFormatRGBA16Float, nil, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &mockCreator{}
			info := NewRegistry().GetOrCreate(9)
			err := info.UploadPixels(NewUploader(creator, tt.format), 1, 1, []byte{1, 2, 3, 4})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UploadPixels error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got := creator.created[0].data; string(got) != string(tt.want) {
				t.Errorf("uploaded %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUploaderWithoutCreator(t *testing.T) {
	var up *Uploader
	if up.Available() {
		t.Error("nil uploader should not be available")
	}
	info := NewRegistry().GetOrCreate(1)
	if err := info.UploadPixels(NewUploader(nil, 0), 1, 1, make([]byte, 4)); !errors.Is(err, ErrNoCreator) {
		t.Errorf("UploadPixels error = %v, want ErrNoCreator", err)
	}
}

func TestTakeTexture(t *testing.T) {
	creator := &mockCreator{}
	info := NewRegistry().GetOrCreate(1)
	if err := info.UploadPixels(NewUploader(creator, 0), 1, 1, make([]byte, 4)); err != nil {
		t.Fatal(err)
	}
	tex := info.TakeTexture()
	if tex == nil {
		t.Fatal("TakeTexture returned nil")
	}
	if _, ready := info.Texture(); ready {
		t.Error("record should not be ready after TakeTexture")
	}
	DestroyTexture(tex)
	if !creator.created[0].destroyed {
		t.Error("DestroyTexture did not destroy")
	}
}
