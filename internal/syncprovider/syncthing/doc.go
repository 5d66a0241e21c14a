// Package syncthing asks a Syncthing instance whether an item still has
// pending transfer work, via its REST API.
package syncthing
