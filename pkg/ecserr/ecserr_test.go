package ecserr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasses(t *testing.T) {
	assert.NotPanics(t, func() {
		Check(true, "op", "should not fire")
	})
}

func TestCheckPanics(t *testing.T) {
	assert.PanicsWithValue(t, &ProgrammingError{Op: "op", Msg: "boom"}, func() {
		Check(false, "op", "boom")
	})
}

func TestCheckfFormats(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*ProgrammingError)
		assert.True(t, ok)
		assert.Equal(t, "ecs: programming error in World.AddComponent: type index 400 out of range", err.Error())
	}()
	Checkf(false, "World.AddComponent", "type index %d out of range", 400)
}
