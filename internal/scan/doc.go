// Package scan discovers video files and release directories waiting in
// the source directory.
package scan
