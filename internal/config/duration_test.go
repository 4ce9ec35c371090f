package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "seconds", input: "timeout: 30s", expected: 30 * time.Second},
		{name: "milliseconds", input: "timeout: 250ms", expected: 250 * time.Millisecond},
		{name: "compound", input: "timeout: 1h30m", expected: 90 * time.Minute},
		{name: "quoted", input: `timeout: "5s"`, expected: 5 * time.Second},
		{name: "empty string", input: `timeout: ""`, expected: 0},
		{name: "invalid", input: "timeout: soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out struct {
				Timeout Duration `yaml:"timeout"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &out)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Timeout.Duration())
		})
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(struct {
		Timeout Duration `yaml:"timeout"`
	}{Timeout: Duration(15 * time.Second)})

	require.NoError(t, err)
	assert.Equal(t, "timeout: 15s\n", string(out))
}

func TestDuration_Text(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("2m")))
	assert.Equal(t, 2*time.Minute, d.Duration())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("2 minutes")))
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var out struct {
		Timeout Duration `json:"timeout"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"100ms"}`), &out))
	assert.Equal(t, 100*time.Millisecond, out.Timeout.Duration())

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":null}`), &out))
	assert.Zero(t, out.Timeout)

	data, err := json.Marshal(struct {
		Timeout Duration `json:"timeout"`
	}{Timeout: Duration(time.Second)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timeout":"1s"}`, string(data))
}
