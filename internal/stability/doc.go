// Package stability decides whether a download has finished
// transferring before it is moved, using sync service status, transfer
// marker files, and repeated size observations.
package stability
