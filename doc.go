// Package dlfcn exposes dynamic library loading (open, close, symbol
// resolution and error retrieval) to callers that keep native handles in
// byte buffers they allocate themselves.
//
// A handle buffer is SizeofHandle bytes and an address buffer is
// SizeofPointer bytes. Module operates on those buffers and reports native
// failures as status codes; Dlerror is available only when the module also
// implements ErrorReporter. Library is the owned Go-side equivalent that
// closes exactly once and converts to and from a handle buffer with Encode
// and Decode.
//
// The package resolves addresses only. Calling a resolved function is left
// to the caller.
package dlfcn
