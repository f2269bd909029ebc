package main

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGinMode(t *testing.T) {
	cases := []struct {
		mode string
		want string
	}{
		{"development", gin.DebugMode},
		{"debug", gin.DebugMode},
		{"production", gin.ReleaseMode},
		{"release", gin.ReleaseMode},
		{"test", gin.TestMode},
		{"", gin.DebugMode},
		{"staging", gin.DebugMode},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ginMode(c.mode), "mode=%q", c.mode)
	}
}
