package arena

import "github.com/pkg/errors"

// ErrOutOfMemory is returned when the backing allocator can neither grow the
// current chunk in place nor provide a new one. Errors returned by Allocate
// wrap it; test with errors.Is.
var ErrOutOfMemory = errors.New("arena: out of memory")
