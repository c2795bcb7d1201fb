package pooledreader

import (
	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/utils/pool"
)

// PooledReader переиспользует буферы кадров между чтениями.
type PooledReader struct {
	pool *pool.SlicePool[[]byte]
	r    model.MessageReader
}

func New(r model.MessageReader) *PooledReader {
	return &PooledReader{pool.NewBoundedSlicePool[[]byte](consts.ReaderPoolSize), r}
}

func (r *PooledReader) ReadNext() ([]byte, error) {
	b, _ := r.pool.Acquire()
	return r.r.ReadNext(b[:0])
}

func (r *PooledReader) Release(b []byte) {
	if cap(b) == 0 {
		return
	}
	r.pool.Release(b)
}

var _ model.PooledMessageReader = (*PooledReader)(nil)
