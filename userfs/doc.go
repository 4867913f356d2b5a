// Package userfs implements an in-memory, block-structured file store:
// named files made of fixed 4 KiB blocks, opened through a descriptor
// table whose cursor tracks an independent read/write position per
// handle, with delete-while-open semantics (a deleted file survives
// until its last open descriptor closes).
package userfs
