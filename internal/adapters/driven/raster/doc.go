// Package raster implements driven.Rasteriser on top of fogleman/gg.
//
// Scenes are painted in z-order onto an RGBA canvas of the scene size and
// encoded as PNG. Text uses the Go font family from golang.org/x/image, so
// rendering needs no system fonts. Images are read from data: URLs, local
// paths and http(s) URLs through an ImageLoader.
package raster
