package aferofs

import (
	"errors"
	"io"
	"os"
	"reflect"
	"runtime"
	"sort"
	"testing"

	"github.com/spf13/afero"

	"github.com/absfs/mountfs"
)

// writeFile writes data through the backend's write stream
func writeFile(t *testing.T, b *Backend, name string, data []byte) {
	t.Helper()
	w, err := b.OpenWrite(name, 0644)
	if err != nil {
		t.Fatalf("OpenWrite(%q) failed: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBasicOps(t *testing.T) {
	b := New(afero.NewMemMapFs())

	if err := b.Mkdir("/dir", 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	writeFile(t, b, "/dir/a.txt", []byte("a"))

	r, err := b.OpenRead("/dir/a.txt")
	if err != nil {
		t.Fatalf("OpenRead failed: %v", err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil || string(data) != "a" {
		t.Errorf("read (%q, %v), want \"a\"", data, err)
	}

	names, err := b.ReadDirNames("/dir")
	if err != nil {
		t.Fatalf("ReadDirNames failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"a.txt"}) {
		t.Errorf("ReadDirNames = %v, want [a.txt]", names)
	}

	if err := b.Rename("/dir/a.txt", "/dir/b.txt"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := b.Remove("/dir/b.txt"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := b.Stat("/dir/b.txt", true); !os.IsNotExist(err) {
		t.Errorf("Stat after Remove = %v, want not-exist", err)
	}
}

// afero.MemMapFs carries no symlink support; the adapter degrades to an
// invalid-operation error rather than pretending.
func TestSymlinkUnsupported(t *testing.T) {
	b := New(afero.NewMemMapFs())
	if err := b.Symlink("/target", "/link"); !errors.Is(err, os.ErrInvalid) {
		t.Errorf("Symlink on MemMapFs = %v, want invalid-operation", err)
	}
	if _, err := b.Readlink("/link"); !errors.Is(err, os.ErrInvalid) {
		t.Errorf("Readlink on MemMapFs = %v, want invalid-operation", err)
	}
}

func TestOsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	// Confine the OS filesystem to a scratch root so the backend's virtual
	// root lines up with the test namespace.
	b := New(afero.NewBasePathFs(afero.NewOsFs(), t.TempDir()))

	if err := b.Mkdir("/dir", 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	writeFile(t, b, "/dir/real.txt", []byte("real"))
	if err := b.Symlink("real.txt", "/dir/link"); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	info, err := b.Stat("/dir/link", false)
	if err != nil {
		t.Fatalf("Lstat failed: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("expected symlink mode without follow")
	}

	target, err := b.Readlink("/dir/link")
	if err != nil {
		t.Fatalf("Readlink failed: %v", err)
	}
	if target != "real.txt" {
		t.Errorf("Readlink = %q, want raw target", target)
	}

	info, err = b.Stat("/dir/link", true)
	if err != nil {
		t.Fatalf("follow Stat failed: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("expected the target file with follow")
	}
}

func TestModificationPolicyAndXattr(t *testing.T) {
	b := New(afero.NewMemMapFs(),
		WithModificationPolicy(func(name string) bool { return name != "/frozen" }),
		WithXattrFunc(func(name, key string) ([]byte, error) {
			if key == "user.origin" {
				return []byte("afero"), nil
			}
			return nil, nil
		}),
	)

	if b.SupportsModifications("/frozen") {
		t.Error("expected /frozen to be read-only per the injected policy")
	}
	if !b.SupportsModifications("/thawed") {
		t.Error("expected /thawed to be modifiable")
	}

	val, err := b.Getxattr("/any", "user.origin")
	if err != nil || string(val) != "afero" {
		t.Errorf("Getxattr = (%q, %v), want afero", val, err)
	}
	val, err = b.Getxattr("/any", "other")
	if err != nil || val != nil {
		t.Errorf("absent attribute = (%q, %v), want (nil, nil)", val, err)
	}
}

// Mount an afero-backed scratch space next to in-memory mounts and make
// sure the union routes through it like any other backend.
func TestMountedThroughUnion(t *testing.T) {
	scratch := New(afero.NewMemMapFs())
	def := New(afero.NewMemMapFs())

	ufs, err := mountfs.New(map[string]mountfs.Backend{
		"/scratch": scratch,
	}, def)
	if err != nil {
		t.Fatalf("failed to create union filesystem: %v", err)
	}

	if err := ufs.WriteFile("/scratch/t.txt", []byte("t"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := ufs.ReadFile("/scratch/t.txt")
	if err != nil || string(data) != "t" {
		t.Fatalf("ReadFile = (%q, %v), want t", data, err)
	}

	names, err := ufs.ReadDirNames("/")
	if err != nil {
		t.Fatalf("ReadDirNames(/) failed: %v", err)
	}
	sort.Strings(names)
	found := false
	for _, n := range names {
		if n == "scratch" {
			found = true
		}
	}
	if !found {
		t.Errorf("root listing %v misses the scratch mount", names)
	}
}
