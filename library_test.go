package dlfcn

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// knownSymbol is exported by SystemLibrary on every supported platform.
func knownSymbol() string {
	if runtime.GOOS == "windows" {
		return "GetCurrentProcessId"
	}
	return "malloc"
}

func requireSupportedPlatform(t *testing.T) {
	t.Helper()
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "windows":
	default:
		t.Skipf("no system loader tests for %s", runtime.GOOS)
	}
}

func TestSystemFacilityFailures(t *testing.T) {
	requireSupportedPlatform(t)
	f := SystemFacility()

	t.Run("Missing library file", func(t *testing.T) {
		_, err := f.Open("nonexistent_library.so", ModeDefault)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to load shared library")
	})

	t.Run("Invalid library file", func(t *testing.T) {
		fakeLibPath := filepath.Join(t.TempDir(), "fake_library.so")
		// Create a fake file that is not a valid shared library
		err := os.WriteFile(fakeLibPath, []byte("not a valid library"), 0644)
		require.NoError(t, err)
		_, err = f.Open(fakeLibPath, ModeDefault)
		require.Error(t, err)
		require.NotEmpty(t, f.(Diagnoser).Diagnose(err))
	})
}

func TestSystemOpenResolveClose(t *testing.T) {
	requireSupportedPlatform(t)
	m, err := New()
	require.NoError(t, err)

	handle, handleIntact := guarded(SizeofHandle)
	addr, addrIntact := guarded(SizeofPointer)

	rc, err := m.Open(SystemLibrary(), handle)
	require.NoError(t, err)
	require.Equal(t, StatusOK, rc)

	require.Equal(t, StatusOK, m.Dlsym(handle, knownSymbol(), addr))
	require.NotZero(t, Address(addr))

	PutAddress(addr, 0)
	require.NotEqual(t, StatusOK, m.Dlsym(handle, "definitely_not_a_symbol_xyz", addr))
	require.Zero(t, Address(addr))
	if r, ok := m.(ErrorReporter); ok {
		require.NotEqual(t, noError, r.Dlerror(handle))
	}

	m.Close(handle)
	require.True(t, handleIntact())
	require.True(t, addrIntact())
}

func TestSystemOpenSelf(t *testing.T) {
	requireSupportedPlatform(t)
	m, err := New()
	require.NoError(t, err)

	handle := make([]byte, SizeofHandle)
	rc, err := m.Open(nil, handle)
	require.NoError(t, err)
	require.Equal(t, StatusOK, rc)
	defer m.Close(handle)

	if runtime.GOOS == "windows" {
		// a Go executable exports nothing to GetProcAddress
		return
	}
	addr := make([]byte, SizeofPointer)
	require.Equal(t, StatusOK, m.Dlsym(handle, knownSymbol(), addr))
	require.NotZero(t, Address(addr))
}

func TestSystemOpenMissing(t *testing.T) {
	requireSupportedPlatform(t)
	m, err := New()
	require.NoError(t, err)

	handle := make([]byte, SizeofHandle)
	rc, err := m.Open("libdefinitely_missing_xyz.so", handle)
	require.NoError(t, err)
	require.NotEqual(t, StatusOK, rc)

	r, ok := m.(ErrorReporter)
	require.True(t, ok, "system facilities support deferred errors")
	msg := r.Dlerror(handle)
	require.NotEmpty(t, msg)
	require.NotEqual(t, noError, msg)
}

func TestLibraryFileName(t *testing.T) {
	name := LibraryFileName("m")
	require.Contains(t, name, "m")
	require.Equal(t, name, LibraryFileName(name), "already-suffixed names are unchanged")
	require.NotEmpty(t, SystemLibrary())
}
