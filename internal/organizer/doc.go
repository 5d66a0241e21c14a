// Package organizer wires parsing, classification, stability checking,
// and folder matching into the move pipeline that files downloads into
// the media library.
package organizer
