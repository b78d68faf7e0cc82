package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/workforce-api/internal/query"
)

func TestGenerateInviteCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[2-9A-HJKMNP-Z]{4}-[2-9A-HJKMNP-Z]{4}-[2-9A-HJKMNP-Z]{4}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
	assert.Equal(t, "ABCD-EFGH-JKMN", NormalizeInviteCode("  abcd-efgh-jkmn "))
}

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestGetPagination(t *testing.T) {
	assert.Equal(t, query.Page{Number: 1, Limit: 20}, GetPagination(testContext("/x")))
	assert.Equal(t, query.Page{Number: 3, Limit: 5}, GetPagination(testContext("/x?page=3&limit=5")))
	assert.Equal(t, query.Page{Number: 1, Limit: 100}, GetPagination(testContext("/x?page=-2&limit=500")))
	assert.Equal(t, query.Page{Number: 1, Limit: 20}, GetPagination(testContext("/x?page=abc&limit=xyz")))
	assert.Equal(t, query.Page{Number: 2, Limit: 1}, GetPagination(testContext("/x?page=2&limit=0")))
	assert.Equal(t, query.Page{Number: 1, Limit: 1}, GetPagination(testContext("/x?limit=-7")))
}

func TestParseOptionalID(t *testing.T) {
	id, ok := ParseOptionalID(testContext("/x?boardId=7"), "boardId")
	require.True(t, ok)
	require.NotNil(t, id)
	assert.Equal(t, uint64(7), *id)

	id, ok = ParseOptionalID(testContext("/x"), "boardId")
	assert.True(t, ok)
	assert.Nil(t, id)

	_, ok = ParseOptionalID(testContext("/x?boardId=seven"), "boardId")
	assert.False(t, ok)
}
