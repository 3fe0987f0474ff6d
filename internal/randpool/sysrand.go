package randpool

import (
	"bufio"
	"crypto/rand"
	"io"
	"sync"
)

var systemPool = sync.Pool{
	New: func() interface{} {
		return bufio.NewReader(rand.Reader)
	},
}

func readSystem(b []byte) error {
	r := systemPool.Get().(*bufio.Reader)
	_, err := io.ReadFull(r, b)
	systemPool.Put(r)
	return err
}
