// Package utils holds the small shared helpers that the numeric paths lean on.
package utils

import (
	"runtime"
	"sync"
)

// MultiThread runs f for every integer in [start, end), splitting the range across goroutines.
//
// It should be called sequentially, not from a separate thread; it returns once the whole
// range has been handled. 'opsPerThread' is the number of indexes a goroutine claims at a
// time, 'threadsPerCPU' the number of goroutines created per CPU. Callers are responsible for
// making f safe to run concurrently for distinct indexes.
func MultiThread(start, end int, f func(int), opsPerThread, threadsPerCPU int) {
	if end <= start {
		return
	}

	numThreads := runtime.NumCPU() * threadsPerCPU
	if span := end - start; numThreads > span {
		numThreads = span
	}

	index := start
	var indexMux sync.Mutex

	var wg sync.WaitGroup
	wg.Add(numThreads)

	for thread := 0; thread < numThreads; thread++ {
		go func() {
			defer wg.Done()

			for {
				indexMux.Lock()
				if index >= end {
					indexMux.Unlock()
					return
				}

				i := index
				index += opsPerThread
				indexMux.Unlock()

				e := i + opsPerThread
				if e > end {
					e = end
				}

				for ; i < e; i++ {
					f(i)
				}
			}
		}()
	}

	wg.Wait()
}
