// Package imaging connects image files to the edge detector.
//
// It loads and caches source images, reduces them to single-channel intensity
// grids, runs the Canny detector over a whole image or a region of it, and
// renders results (edge masks, gradient previews, overlays) as base64 PNG for
// the MCP tools.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. A grid built from an image uses row =
// Y and column = X. For regions, (x1,y1) is inclusive and (x2,y2) exclusive.
// Results for a region are relative to the region's top-left corner.
//
// # Intensity
//
// Images are reduced to one of four channels with values in [0, 1]: luma
// (ITU-R BT.601), red, green or blue. Detector thresholds are compared
// against the Sobel gradient magnitude of that intensity after smoothing.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions hold no state
// and may be called concurrently; cached images are shared and must not be
// modified.
package imaging
