// Package formats provides parsers for binary 3D asset containers.
package formats

// Note: binary glTF (GLB) container decoding lives in glb.go
// Note: typed, strided accessor reads live in accessor.go
