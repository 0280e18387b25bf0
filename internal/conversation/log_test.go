package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_AppendAssignsContiguousIndexes(t *testing.T) {
	log := NewLog()

	idx0 := log.Append(NewInstruction("task"))
	idx1 := log.Append(NewUtterance(AuthorDriver, "first", nil))
	idx2 := log.Append(NewUtterance(AuthorNavigator, "second", nil))

	assert.Equal(t, 0, idx0)
	assert.Equal(t, 1, idx1)
	assert.Equal(t, 2, idx2)

	snapshot := log.Snapshot()
	for i, msg := range snapshot {
		assert.Equal(t, i, msg.TurnIndex)
	}
}

func TestLog_SnapshotIsDefensiveCopy(t *testing.T) {
	log := NewLog()
	log.Append(NewInstruction("task"))

	before := log.Snapshot()
	assert.Len(t, before, 1)

	// Mutating the snapshot must not reach the live log.
	before[0].Content = "tampered"
	assert.Equal(t, "task", log.Snapshot()[0].Content)

	// A previously obtained snapshot stays unchanged across later appends.
	log.Append(NewUtterance(AuthorDriver, "hello", nil))
	log.Append(NewUtterance(AuthorNavigator, "hi", nil))
	assert.Len(t, before, 1)
	assert.Equal(t, 3, log.Len())
}

func TestAuthor_Other(t *testing.T) {
	assert.Equal(t, AuthorNavigator, AuthorDriver.Other())
	assert.Equal(t, AuthorDriver, AuthorNavigator.Other())
}
