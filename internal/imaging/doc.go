// Package imaging provides the image primitives the counting pipeline is
// built from.
//
// It covers four areas:
//   - Loading and saving: Open decodes with EXIF auto-orientation and returns
//     an opaque *image.NRGBA anchored at (0,0); Save picks the encoder from
//     the file extension; ImageCache keeps decoded images for the server's
//     metadata tools.
//   - Color spaces: ToHSV8 and ToLab8 convert 8-bit RGB into the 8-bit HSV
//     and Lab encodings the thresholds are written in.
//   - Masks: single-channel *image.Gray masks with 0 for off and 255 for on,
//     plus histogram, Otsu threshold, closing, median and Gaussian blur.
//   - Drawing: circle outlines and the count caption on the annotated image.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are stateless
// and never modify their inputs; each returns a newly allocated image.
package imaging
