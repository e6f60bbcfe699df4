// Package pixpack hides a byte payload in the least significant bit of the
// red channel of a set of images.
//
// Every used image carries one frame: a 96-bit header (chunk index, total
// chunks, payload bit length, big-endian uint32 each) followed by that
// image's share of the payload bits, one bit per pixel in row-major order.
// The payload is split greedily across images in canonical (name) order.
package pixpack
