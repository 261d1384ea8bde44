package pipeline

import "time"

func Merge(a, b <-chan int, done <-chan struct{}) <-chan int {
	out := make(chan int)
	go func() {
		defer close(out)
		for {
			select {
			case v := <-a:
				out <- v
			case v := <-b:
				out <- v
			case <-done:
				return
			case <-time.After(time.Second):
				return
			}
		}
	}()
	return out
}
