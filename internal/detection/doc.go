// Package detection finds circles in gray images.
//
// The pipeline mirrors the classic gradient Hough transform:
//
//  1. Edge Detection: Sobel derivatives followed by Canny non-maximum
//     suppression and hysteresis
//  2. Center Voting: each edge pixel votes along its gradient line
//  3. Center Selection: local accumulator maxima above a vote threshold,
//     strongest first, thinned by a minimum center distance
//  4. Radius Estimation: the densest band of edge distances around each center
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Circle centers are reported at accumulator cell centers, so they are
// fractional when the accumulator resolution differs from the image.
//
// # Limitations
//
// The detector works best on smooth, high-contrast input such as a blurred
// binary mask. Textured photographs produce many spurious edge votes.
package detection
