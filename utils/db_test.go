package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func resetDBHolder() {
	mu.Lock()
	db = nil
	mu.Unlock()
}

func openTestConn(t *testing.T) *gorm.DB {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestInitDBKeepsFirstConnection(t *testing.T) {
	resetDBHolder()

	first := openTestConn(t)
	second := openTestConn(t)

	InitDB(first)
	InitDB(second)
	assert.Same(t, first, GetDB())
}

func TestDBHolderConcurrentAccess(t *testing.T) {
	resetDBHolder()

	conn := openTestConn(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			InitDB(conn)
		}()
		go func() {
			defer wg.Done()
			_ = GetDB()
		}()
	}
	wg.Wait()

	assert.Same(t, conn, GetDB())
}
