package models

// Identity is what a validated access token resolves to.
type Identity struct {
	UID        int64
	Permission int
}

// CanWrite reports whether the identity may upload at all.
func (i Identity) CanWrite() bool {
	return i.Permission > 0
}
