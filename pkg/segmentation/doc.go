// Package segmentation finds connected foreground regions in a thresholded
// mask and cuts them out of the matching RGBA composite.
//
// A Run owns the per-image scratch state: the visited set and a work list
// whose capacity is fixed at width*height. Both are allocated once and reused
// by every flood fill of the run. The work list never grows; when a visited
// pixel cannot push all four of its neighbors, none are pushed and the run's
// Truncations counter is incremented. Components may then be incomplete on
// large, fully foreground images. This bounds memory and is not reported as
// an error.
//
// Seeds are sampled on the even (x, y) grid only, so a region made up solely
// of odd-coordinate pixels (a lone pixel at (1,1), say) is never discovered.
package segmentation
