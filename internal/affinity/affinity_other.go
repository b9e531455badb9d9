//go:build !linux

package affinity

func pin(cpu int) {
	// No portable affinity syscall outside Linux; AddThreads still works,
	// it just can't steer which core a worker lands on.
}
