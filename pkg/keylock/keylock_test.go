package keylock_test

import (
	"sync"
	"testing"

	"anoa.com/bragboard/pkg/keylock"
	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	t.Parallel()

	locks := keylock.New()
	counter := 0
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("post:user")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.Len())
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	locks := keylock.New()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, locks.Len())
}
