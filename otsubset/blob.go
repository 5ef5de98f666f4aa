package otsubset

// Blob is an immutable byte buffer holding a finished table. Ownership of
// the underlying storage transfers to the blob when it is created; an
// optional release hook lets callers return the storage to a pool or arena.
type Blob struct {
	data    []byte
	release func()
}

// NewBlob wraps data in a blob. release may be nil.
func NewBlob(data []byte, release func()) *Blob {
	return &Blob{data: data, release: release}
}

// Bytes returns the blob's data. Clients must treat it as read-only.
func (b *Blob) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the byte size of the blob.
func (b *Blob) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Release invalidates the blob and runs the release hook, if any.
// The blob must not be used afterwards.
func (b *Blob) Release() {
	if b == nil {
		return
	}
	b.data = nil
	if b.release != nil {
		b.release()
		b.release = nil
	}
}
