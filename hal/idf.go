//go:build idf

package hal

/*
#include <stdint.h>
#include <stdlib.h>

extern void main_app_log(int32_t level, const char *text);
extern void acquire_main_app_log_buffer_lock(void);
extern void release_main_app_log_buffer_lock(void);
extern void main_app_abort(const char *details);

extern void vPortEnterCritical(void);
extern void vPortExitCritical(void);
extern int xQueueReceive(void *queue, void *item, uint32_t ticks);
extern int xTaskCreatePinnedToCore(void *task, const char *name, uint32_t stack_depth,
	void *parameter, unsigned int priority, void *handle, int core_id);
extern void vTaskDelete(void *handle);
extern void delay(uint32_t ms);

extern void current_sensor_init(void);
extern void current_sensor_read_debug(void);
extern void control_init(void);
extern void control_turn_on(void);
extern void control_turn_off(void);
extern void efuse_init(void);
extern void buzzer_init(void);
extern void buzzer_tone(uint32_t freq_hz, uint16_t duration_ms);
extern void *encoder_init(uint32_t long_press_duration);
extern void display_init(int32_t (*callback)(void));
extern void display_measure_fps(void);
extern void motion_init(void);
extern void motion_read_debug(void);

// Exported from package main.
extern void lumen_task_trampoline(uintptr_t param);
extern int32_t lumen_display_poll(void);

static void lumen_task_entry(void *param) {
	lumen_task_trampoline((uintptr_t)param);
}

static int lumen_create_task(const char *name, uint32_t stack_depth, uintptr_t param,
	unsigned int priority, void **handle, int core) {
	return xTaskCreatePinnedToCore((void *)lumen_task_entry, name, stack_depth,
		(void *)param, priority, (void *)handle, core);
}

static void lumen_display_init(void) {
	display_init(lumen_display_poll);
}
*/
import "C"

import (
	"sync"
	"unsafe"
)

// taskNameLen is configMAX_TASK_NAME_LEN of the firmware.
const taskNameLen = 16

type idfHAL struct{}

// New returns the firmware bindings.
func New() HAL { return idfHAL{} }

func (idfHAL) Scheduler() Scheduler         { return idfScheduler{} }
func (idfHAL) Heap() Heap                   { return idfHeap{} }
func (idfHAL) Port() Port                   { return idfPort{} }
func (idfHAL) LogSink() LogSink             { return idfLogSink{} }
func (idfHAL) Aborter() Aborter             { return idfAborter{} }
func (idfHAL) CurrentSensor() CurrentSensor { return idfCurrentSensor{} }
func (idfHAL) USB() USB                     { return idfUSB{} }
func (idfHAL) EFuse() EFuse                 { return idfEFuse{} }
func (idfHAL) Buzzer() Buzzer               { return idfBuzzer{} }
func (idfHAL) Encoder() Encoder             { return idfEncoder{} }
func (idfHAL) Display() Display             { return idfDisplay{} }
func (idfHAL) Motion() Motion               { return idfMotion{} }

type idfScheduler struct{}

func (idfScheduler) CreateTask(name string, stackDepth uint32, param uintptr, priority uint32, core int32) (TaskHandle, bool) {
	var buf [taskNameLen]byte
	copy(buf[:taskNameLen-1], name)

	var h unsafe.Pointer
	rc := C.lumen_create_task((*C.char)(unsafe.Pointer(&buf[0])), C.uint32_t(stackDepth), C.uintptr_t(param),
		C.uint(priority), &h, C.int(core))
	if rc != 1 {
		return nil, false
	}
	return TaskHandle(h), true
}

func (idfScheduler) DeleteTask(h TaskHandle) { C.vTaskDelete(unsafe.Pointer(h)) }

func (idfScheduler) QueueReceive(q QueueHandle, item unsafe.Pointer, ticks uint32) bool {
	return C.xQueueReceive(unsafe.Pointer(q), item, C.uint32_t(ticks)) == 1
}

func (idfScheduler) Delay(ms uint32) { C.delay(C.uint32_t(ms)) }

type idfHeap struct{}

func (idfHeap) Malloc(size uintptr) unsafe.Pointer { return C.malloc(C.size_t(size)) }
func (idfHeap) Free(p unsafe.Pointer)              { C.free(p) }

type idfPort struct{}

func (idfPort) EnterCritical() { C.vPortEnterCritical() }
func (idfPort) ExitCritical()  { C.vPortExitCritical() }

type idfLogSink struct{}

func (idfLogSink) AcquireLogLock() { C.acquire_main_app_log_buffer_lock() }
func (idfLogSink) ReleaseLogLock() { C.release_main_app_log_buffer_lock() }

func (idfLogSink) Log(level int32, text *byte) {
	C.main_app_log(C.int32_t(level), (*C.char)(unsafe.Pointer(text)))
}

type idfAborter struct{}

func (idfAborter) Abort(details *byte) {
	C.main_app_abort((*C.char)(unsafe.Pointer(details)))
	select {}
}

type idfCurrentSensor struct{}

func (idfCurrentSensor) Init()      { C.current_sensor_init() }
func (idfCurrentSensor) ReadDebug() { C.current_sensor_read_debug() }

type idfUSB struct{}

func (idfUSB) Init()    { C.control_init() }
func (idfUSB) TurnOn()  { C.control_turn_on() }
func (idfUSB) TurnOff() { C.control_turn_off() }

type idfEFuse struct{}

func (idfEFuse) Init() { C.efuse_init() }

type idfBuzzer struct{}

func (idfBuzzer) Init() { C.buzzer_init() }

func (idfBuzzer) Tone(freqHz uint32, durationMs uint16) {
	C.buzzer_tone(C.uint32_t(freqHz), C.uint16_t(durationMs))
}

type idfEncoder struct{}

func (idfEncoder) Init(longPressUs uint32) QueueHandle {
	return QueueHandle(C.encoder_init(C.uint32_t(longPressUs)))
}

var (
	displayMu   sync.Mutex
	displayPoll PollFunc
)

// DisplayPoll is the poll function registered by Display.Init. The C
// display callback exported by package main forwards to it.
func DisplayPoll() int32 {
	displayMu.Lock()
	poll := displayPoll
	displayMu.Unlock()
	if poll == nil {
		return 0
	}
	return poll()
}

type idfDisplay struct{}

func (idfDisplay) Init(poll PollFunc) {
	displayMu.Lock()
	displayPoll = poll
	displayMu.Unlock()
	C.lumen_display_init()
}

func (idfDisplay) FrameRender() { C.display_measure_fps() }

type idfMotion struct{}

func (idfMotion) Init()      { C.motion_init() }
func (idfMotion) ReadDebug() { C.motion_read_debug() }
