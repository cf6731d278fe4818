package telegram

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditState_SetGetClear(t *testing.T) {
	var s editState

	_, ok := s.get(1)
	assert.False(t, ok)

	s.set(1, 100)
	id, ok := s.get(1)
	assert.True(t, ok)
	assert.Equal(t, int64(100), id)

	s.clear(1)
	_, ok = s.get(1)
	assert.False(t, ok)
}

func TestEditState_ConcurrentAccess(t *testing.T) {
	var s editState
	var wg sync.WaitGroup

	// Каждый чат — своя горутина, как у telebot по одному апдейту.
	for chat := int64(0); chat < 50; chat++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			s.set(chat, chat*10)
			if id, ok := s.get(chat); ok {
				assert.Equal(t, chat*10, id)
			}
			s.clear(chat)
		}(chat)
	}
	wg.Wait()

	for chat := int64(0); chat < 50; chat++ {
		_, ok := s.get(chat)
		assert.False(t, ok)
	}
}
