package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPatch_Apply(t *testing.T) {
	name := "B"
	base := User{ID: "u1", Name: "A", EmailAddress: "a@x.com"}

	t.Run("name only", func(t *testing.T) {
		got := UserPatch{Name: &name}.Apply(base)
		assert.Equal(t, User{ID: "u1", Name: "B", EmailAddress: "a@x.com"}, got)
	})

	t.Run("empty patch", func(t *testing.T) {
		p := UserPatch{}
		assert.True(t, p.IsEmpty())
		assert.Equal(t, base, p.Apply(base))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		email := "b@x.com"
		_ = UserPatch{Name: &name, EmailAddress: &email}.Apply(base)
		assert.Equal(t, "A", base.Name)
	})
}
