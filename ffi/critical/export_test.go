package critical

import "lumen/hal"

func resetPort(p hal.Port) {
	port = p
	installed.Store(p != nil)
}
