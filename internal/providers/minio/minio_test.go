package minio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateObjectName(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	name := GenerateObjectName("errorlog/", ".ndjson", now)

	assert.True(t, strings.HasPrefix(name, "errorlog/2024/03/09/"), name)
	assert.True(t, strings.HasSuffix(name, ".ndjson"), name)
	assert.NotEqual(t, name, GenerateObjectName("errorlog", ".ndjson", now))
}
