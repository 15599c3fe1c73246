package alloc

import "lumen/hal"

func resetHeap(h hal.Heap) {
	heap = h
	installed.Store(h != nil)
}
