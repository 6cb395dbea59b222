// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	ResetLogger()
	defer ResetLogger()

	InitLogger()

	require.NotNil(t, Logger)
	assert.NotNil(t, Logger.Core())
}

func TestInitLoggerMultipleCalls(t *testing.T) {
	ResetLogger()
	defer ResetLogger()

	InitLogger()
	first := Logger

	InitLogger()
	second := Logger

	// Multiple calls should keep the same instance
	assert.Same(t, first, second)
}

func TestGetLogger_InitializesLazily(t *testing.T) {
	ResetLogger()
	defer ResetLogger()

	l := GetLogger()
	require.NotNil(t, l)
	assert.Same(t, l, GetLogger())
}

func TestInitLoggerWithConfig(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		wantLevel   zapcore.Level
		wantErr     bool
	}{
		{name: "default_level", level: "", wantLevel: zapcore.InfoLevel},
		{name: "debug_development", level: "debug", development: true, wantLevel: zapcore.DebugLevel},
		{name: "warn", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "invalid", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetLogger()
			defer ResetLogger()

			err := InitLoggerWithConfig(tt.level, tt.development)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, Logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, Logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestResetLogger(t *testing.T) {
	InitLogger()
	ResetLogger()

	assert.Nil(t, Logger)
	assert.False(t, initialized)
}
