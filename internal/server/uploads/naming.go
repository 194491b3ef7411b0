package uploads

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/oasis/internal/filex"
	"github.com/go-git/go-billy/v5"
)

// DefaultMaxCollisionAttempts bounds the numbered-suffix search.
const DefaultMaxCollisionAttempts = 1000

// splitName splits filename once on its last dot.
func splitName(filename string) (stem, ext string, hasExt bool) {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return filename, "", false
	}
	return filename[:i], filename[i+1:], true
}

// withSuffix inserts "-suffix" before the extension.
func withSuffix(filename, suffix string) string {
	stem, ext, ok := splitName(filename)
	if !ok {
		return stem + "-" + suffix
	}
	return stem + "-" + suffix + "." + ext
}

// UniqueName returns a name in dir that no existing entry uses. It tries
// filename itself, then stem-0.ext, stem-1.ext and so on for maxAttempts
// numbered candidates. When all of them are taken it falls back to
// stem-<fallback()>.ext.
func UniqueName(fs billy.Basic, dir, filename string, maxAttempts int, fallback func() string) (string, error) {
	taken := func(name string) (bool, error) {
		ok, err := filex.Exists(fs, filepath.Join(dir, name))
		if err != nil {
			return false, ioError("resolve name", err)
		}
		return ok, nil
	}

	candidate := filename
	for i := 0; ; i++ {
		ok, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
		if i >= maxAttempts {
			break
		}
		candidate = withSuffix(filename, strconv.Itoa(i))
	}

	candidate = withSuffix(filename, fallback())
	ok, err := taken(candidate)
	if err != nil {
		return "", err
	}
	if ok {
		return "", ioError("resolve name", fmt.Errorf("no free name for %q", filename))
	}
	return candidate, nil
}
