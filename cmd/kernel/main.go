// Command kernel boots the scheduler core with a few small demonstration
// programs and drives it for a fixed number of scheduler ticks. It shows
// the three cores cooperating end to end: preemptive scheduling, the heap,
// and the shared-memory gate. The display/task-manager surface these
// programs would normally sit behind is out of scope and not modeled.
package main

import (
	"fmt"

	"spos/internal/kernel"
	"spos/internal/strategy"
)

// writerProgram opens a shared chunk for writing, deposits one byte per
// pass, and closes it again so a reader can get in, cooperating with the
// simulated timer between passes.
func writerProgram(name string, shared uint32, iterations int, k *kernel.Kernel) func() {
	return func() {
		heap := k.OnChipHeap()
		for i := 0; i < iterations; i++ {
			heap.ShWrite(shared, 0, []byte{byte(i)})
			k.Checkpoint()
		}
		fmt.Printf("%s: done\n", name)
	}
}

// readerProgram opens the same shared chunk for reading whenever the writer
// isn't holding it and reports the last byte it observed.
func readerProgram(name string, shared uint32, iterations int, k *kernel.Kernel) func() {
	return func() {
		heap := k.OnChipHeap()
		var last byte
		buf := make([]byte, 1)
		for i := 0; i < iterations; i++ {
			heap.ShRead(shared, 0, buf)
			last = buf[0]
			k.Checkpoint()
		}
		fmt.Printf("%s: done, last=%d\n", name, last)
	}
}

// privateProgram exercises the ordinary (non-shared) allocator: a
// grow-in-place realloc followed by a free.
func privateProgram(name string, iterations int, k *kernel.Kernel) func() {
	return func() {
		heap := k.OnChipHeap()
		buf := heap.Malloc(4)
		for i := 0; i < iterations; i++ {
			if i == iterations/2 && buf != 0 {
				buf = heap.Realloc(buf, 8)
			}
			k.Checkpoint()
		}
		if buf != 0 {
			heap.Free(buf)
		}
		fmt.Printf("%s: done\n", name)
	}
}

func main() {
	k := kernel.New(nil)

	shared := k.OnChipHeap().ShMalloc(1)

	k.Exec(writerProgram("writer", shared, 200, k), 0xC0)
	k.Exec(readerProgram("reader", shared, 200, k), 0x80)
	k.Exec(privateProgram("worker", 200, k), 0x40)

	k.SetSchedulingStrategy(strategy.MLFQ)
	k.StartScheduler()

	for i := 0; i < 2000; i++ {
		k.Tick()
	}
	fmt.Printf("ticks: %d\n", k.Ticks())
}
