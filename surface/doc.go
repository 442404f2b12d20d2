// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the premultiplied RGBA raster buffer shared by
// layers, the brush overlay and export.
//
// A Surface wraps an *image.RGBA, so pixels are 8-bit premultiplied and
// interoperate directly with the image and golang.org/x/image packages.
//
// # Usage
//
//	s, err := surface.New(1200, 1800)
//	if err != nil {
//	    return err
//	}
//	s.Fill(color.White)
//	s.Composite(other, 0.5, blend.Multiply)
//
// Resampling (Scale, Thumbnail) uses golang.org/x/image/draw. Encode
// writes PNG, JPEG, TIFF and BMP.
package surface
