// Package transfer copies every regular file of a source directory into a
// destination directory.
//
// Engine.Copy is fail-fast: the first validation, enumeration, copy, or
// attribute failure ends the transfer and files already copied stay in place.
// Failures never escape as errors; they are folded into the returned Result
// together with the text of the last operating-system error observed.
package transfer
