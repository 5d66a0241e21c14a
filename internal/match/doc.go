// Package match locates the existing library folder for a title using
// fuzzy similarity, falling back to creating a new folder name.
package match
