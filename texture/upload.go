// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ErrUnsupportedFormat is returned for presentation formats other than
// 8-bit RGBA or BGRA.
var ErrUnsupportedFormat = errors.New("texture: unsupported texture format")

// Uploader moves premultiplied RGBA pixels into GPU textures through a
// gpucontext.TextureCreator, swizzling for BGRA targets.
//
// An Uploader is used from the presenting goroutine only.
type Uploader struct {
	creator gpucontext.TextureCreator
	format  gputypes.TextureFormat
	scratch []byte
}

// NewUploader returns an uploader for creator. An undefined format means
// RGBA8Unorm.
func NewUploader(creator gpucontext.TextureCreator, format gputypes.TextureFormat) *Uploader {
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	return &Uploader{creator: creator, format: format}
}

// Available reports whether uploads can succeed at all.
func (u *Uploader) Available() bool {
	return u != nil && u.creator != nil && u.supported()
}

func (u *Uploader) supported() bool {
	switch u.format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// Format returns the target texture format.
func (u *Uploader) Format() gputypes.TextureFormat { return u.format }

// Upload writes premultiplied RGBA data into tex, creating a new texture when tex is nil or has
// a different size. A replaced texture is destroyed after the new one
// exists.
func (u *Uploader) Upload(tex gpucontext.Texture, w, h int, data []byte) (gpucontext.Texture, error) {
	if u == nil || u.creator == nil {
		return nil, ErrNoCreator
	}
	if !u.supported() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, u.format)
	}
	if len(data) != w*h*4 {
		return nil, fmt.Errorf("texture: data size %d does not match %dx%d", len(data), w, h)
	}
	data = u.swizzle(data)

	if tex != nil && tex.Width() == w && tex.Height() == h {
		if updater, ok := tex.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(data); err != nil {
				return nil, fmt.Errorf("texture: update failed: %w", err)
			}
			return tex, nil
		}
	}
	created, err := u.creator.NewTextureFromRGBA(w, h, data)
	if err != nil {
		return nil, fmt.Errorf("texture: NewTextureFromRGBA failed: %w", err)
	}
	// Pixels are premultiplied; let the presenter pick the matching blend.
	if pt, ok := created.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	if tex != nil {
		DestroyTexture(tex)
	}
	return created, nil
}

func (u *Uploader) swizzle(data []byte) []byte {
	switch u.format {
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
	default:
		return data
	}
	if cap(u.scratch) < len(data) {
		u.scratch = make([]byte, len(data))
	}
	out := u.scratch[:len(data)]
	for i := 0; i+3 < len(data); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = data[i+2], data[i+1], data[i], data[i+3]
	}
	return out
}
