// Package pipeline counts hydrangea blossoms in a photograph.
//
// A run is a strict chain of four stages, each a pure function returning a
// fresh value:
//
//  1. Suppress: HSV range filtering blacks out foliage and soil
//  2. Segment: seeded two-group k-means in Lab space; the brighter group is floral
//  3. Refine: Otsu binarization, morphological close and median filtering
//  4. Count: Gaussian smoothing, gradient Hough circles and a radius band filter
//
// Pipeline.Run loads the input once at the start and hands five artifacts to
// an ArtifactSink at the end. Input errors (no path, unreadable file, empty
// image) abort the run before anything is written.
package pipeline
