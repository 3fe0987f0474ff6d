package randpool

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log"
	"runtime"
	"sync"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/sys/cpu"
)

// a generator is retired after producing this many bytes
const rekeyAfter = 50 * 1 << 30

var fallback = func() *chacha20.Cipher {
	var seed [12 + 32]byte // 12 byte nonce, 32 byte key
	_, err := io.ReadFull(rand.Reader, seed[:])
	if err != nil {
		panic(err)
	}
	c, err := chacha20.NewUnauthenticatedCipher(seed[12:], seed[:12])
	if err != nil {
		panic(err)
	}
	return c
}()

var fallbackMu sync.Mutex

func seed(dst []byte) {
	if err := readSystem(dst); err != nil {
		log.Println("randpool: system rand unavailable, seeding from fallback")
		fallbackMu.Lock()
		fallback.XORKeyStream(dst, dst)
		fallbackMu.Unlock()
	}
}

type chachaRNG struct {
	c    *chacha20.Cipher
	used uint64
}

var chachaPool = sync.Pool{
	New: func() interface{} {
		var s [12 + 32]byte
		seed(s[:])
		c, err := chacha20.NewUnauthenticatedCipher(s[12:], s[:12])
		if err != nil {
			panic(err) // key and nonce sizes are fixed
		}
		return &chachaRNG{c: c}
	},
}

func readChaCha(dst []byte) {
	r := chachaPool.Get().(*chachaRNG)
	clear(dst)
	r.used += uint64(len(dst))
	r.c.XORKeyStream(dst, dst)
	if r.used < rekeyAfter {
		chachaPool.Put(r)
	}
}

type aesRNG struct {
	stream cipher.Stream
	used   uint64
}

var aesPool = sync.Pool{
	New: func() interface{} {
		var s [16 + 32]byte // 16 byte iv, 32 byte key
		seed(s[:])
		block, err := aes.NewCipher(s[16:])
		if err != nil {
			panic(err) // key size is fixed
		}
		return &aesRNG{stream: cipher.NewCTR(block, s[:16])}
	},
}

func readAES(dst []byte) {
	r := aesPool.Get().(*aesRNG)
	clear(dst)
	r.used += uint64(len(dst))
	r.stream.XORKeyStream(dst, dst)
	if r.used < rekeyAfter {
		aesPool.Put(r)
	}
}

var useAES = (runtime.GOARCH == "arm64" && cpu.ARM64.HasAES) ||
	(runtime.GOARCH == "amd64" && cpu.X86.HasAES) ||
	(runtime.GOARCH == "arm64" && runtime.GOOS == "darwin")

// Read fills dst with cryptographically secure random bytes.
func Read(dst []byte) {
	if useAES {
		readAES(dst)
	} else {
		readChaCha(dst)
	}
}

// Hex returns n random bytes encoded as 2n lowercase hex characters.
func Hex(n int) string {
	b := make([]byte, n)
	Read(b)
	return hex.EncodeToString(b)
}
