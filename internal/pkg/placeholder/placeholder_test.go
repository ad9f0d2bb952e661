package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	values := map[string]interface{}{"otp": "123456", "n": 3, "empty": nil}

	assert.Equal(t, "code 123456, again 123456", Substitute("code {{otp}}, again {{ otp }}", values))
	assert.Equal(t, "3 items", Substitute("{{n}} items", values))
	assert.Equal(t, "[]", Substitute("[{{empty}}]", values))
	assert.Equal(t, "keep {{unknown}}", Substitute("keep {{unknown}}", values))
	assert.Equal(t, "plain", Substitute("plain", nil))
}
