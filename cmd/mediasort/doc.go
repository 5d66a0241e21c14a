// Package main hosts the mediasort CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the organizing run itself plus
// configuration scaffolding and status-cache maintenance. Keep this
// package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags
// here.
package main
