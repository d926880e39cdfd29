package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnowflake_WorkerRange(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.Error(t, err)

	_, err = NewSnowflake(maxWorkerID + 1)
	assert.Error(t, err)

	g, err := NewSnowflake(maxWorkerID)
	require.NoError(t, err)
	id := g.Generate()
	assert.Equal(t, int64(maxWorkerID), (id>>workerIDShift)&maxWorkerID)
}

func TestSnowflake_UniqueAndIncreasing(t *testing.T) {
	g, err := NewSnowflake(7)
	require.NoError(t, err)

	var prev int64
	for i := 0; i < 10000; i++ {
		id := g.Generate()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateTransactionNo_Concurrent(t *testing.T) {
	require.NoError(t, Init(3))

	const n = 2000
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n/4; j++ {
				no := GenerateTransactionNo(PrefixSpend)
				mu.Lock()
				seen[no] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for no := range seen {
		assert.True(t, strings.HasPrefix(no, PrefixSpend))
		break
	}
}

func TestInit_RejectsInvalidWorker(t *testing.T) {
	assert.Error(t, Init(maxWorkerID+1))
}
