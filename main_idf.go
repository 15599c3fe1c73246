//go:build idf

package main

// #include <stdint.h>
import "C"

import (
	"context"

	"lumen/app"
	"lumen/ffi/task"
	"lumen/hal"
	"lumen/internal/config"
)

//export main_app_run
func main_app_run() {
	_ = app.Run(context.Background(), hal.New(), config.Default())
}

//export lumen_task_trampoline
func lumen_task_trampoline(param C.uintptr_t) {
	task.Trampoline(uintptr(param))
}

//export lumen_display_poll
func lumen_display_poll() int32 {
	return hal.DisplayPoll()
}

func main() {}
