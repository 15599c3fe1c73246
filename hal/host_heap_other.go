//go:build !idf && !unix

package hal

func mapArena(size int) ([]byte, error) {
	return make([]byte, size), nil
}
