// Package std provides the standard graph operations the recipe packages
// compose: per-pixel expressions, spatial convolution, box blur, difference
// compositing, masked merging, binarization and 3x3 morphology.
//
// Every constructor validates its parameters fully before creating a node,
// so a failed call leaves the graph untouched. All operations require
// fixed-format inputs; multi-input operations additionally require matching
// formats and dimensions.
//
// Planes not selected through the WithPlanes options are copied unchanged
// from the first input.
package std
